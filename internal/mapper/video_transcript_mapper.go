package mapper

import (
	"time"

	"datasense-be/internal/entity"
	"datasense-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type VideoTranscriptMapper struct{}

func NewVideoTranscriptMapper() *VideoTranscriptMapper {
	return &VideoTranscriptMapper{}
}

func (m *VideoTranscriptMapper) ToEntity(v *model.VideoTranscript) *entity.VideoTranscript {
	if v == nil {
		return nil
	}

	var updatedAt *time.Time
	if !v.UpdatedAt.IsZero() {
		t := v.UpdatedAt
		updatedAt = &t
	}

	return &entity.VideoTranscript{
		Id:             v.Id,
		Partner:        v.Partner,
		FileName:       v.FileName,
		VideoFilePath:  v.VideoFilePath,
		ThumbnailUri:   v.ThumbnailUri,
		Transcript:     v.Transcript,
		EmbeddingValue: v.EmbeddingValue.Slice(),
		Extra:          map[string]interface{}(v.Extra),
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *VideoTranscriptMapper) ToModel(e *entity.VideoTranscript) *model.VideoTranscript {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	var extra datatypes.JSONMap
	if e.Extra != nil {
		extra = datatypes.JSONMap(e.Extra)
	}

	return &model.VideoTranscript{
		Id:             e.Id,
		Partner:        e.Partner,
		FileName:       e.FileName,
		VideoFilePath:  e.VideoFilePath,
		ThumbnailUri:   e.ThumbnailUri,
		Transcript:     e.Transcript,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		Extra:          extra,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *VideoTranscriptMapper) ToEntities(rows []*model.VideoTranscript) []*entity.VideoTranscript {
	entities := make([]*entity.VideoTranscript, len(rows))
	for i, r := range rows {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
