package implementation

import (
	"context"
	"errors"

	"datasense-be/internal/entity"
	"datasense-be/internal/mapper"
	"datasense-be/internal/model"
	"datasense-be/internal/repository/contract"
	"datasense-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VideoTranscriptRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.VideoTranscriptMapper
}

func NewVideoTranscriptRepository(db *gorm.DB) contract.VideoTranscriptRepository {
	return &VideoTranscriptRepositoryImpl{
		db:     db,
		mapper: mapper.NewVideoTranscriptMapper(),
	}
}

func (r *VideoTranscriptRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *VideoTranscriptRepositoryImpl) upsertClause() clause.OnConflict {
	return clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"partner", "file_name", "video_file_path", "thumbnail_uri",
			"transcript", "embedding_value", "extra", "updated_at",
		}),
	}
}

func (r *VideoTranscriptRepositoryImpl) Upsert(ctx context.Context, transcript *entity.VideoTranscript) error {
	m := r.mapper.ToModel(transcript)
	if err := r.db.WithContext(ctx).Clauses(r.upsertClause()).Create(m).Error; err != nil {
		return err
	}
	*transcript = *r.mapper.ToEntity(m)
	return nil
}

// Delete reports whether a row was removed.
func (r *VideoTranscriptRepositoryImpl) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.VideoTranscript{})
	return res.RowsAffected > 0, res.Error
}

func (r *VideoTranscriptRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.VideoTranscript, error) {
	var m model.VideoTranscript
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *VideoTranscriptRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.VideoTranscript{}).Count(&count).Error
	return count, err
}

func (r *VideoTranscriptRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, specs ...specification.Specification) ([]*contract.ScoredVideoTranscript, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is: 1 - cosine_similarity
	type result struct {
		model.VideoTranscript
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("video_transcripts").
		Select("video_transcripts.*, 1 - (embedding_value <=> ?) as similarity", queryVector)
	query = r.applySpecifications(query, specs...)

	err := query.
		Order(gorm.Expr("embedding_value <=> ?", queryVector)).
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredVideoTranscript, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredVideoTranscript{
			Transcript: r.mapper.ToEntity(&res.VideoTranscript),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
