package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type VideoTranscript struct {
	Id             string          `gorm:"type:text;primaryKey"`
	Partner        string          `gorm:"type:text;index"`
	FileName       string          `gorm:"type:text"`
	VideoFilePath  string          `gorm:"type:text;not null"`
	ThumbnailUri   string          `gorm:"type:text"`
	Transcript     string          `gorm:"type:text;not null"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-005 uses 768 dimensions
	Extra          datatypes.JSONMap
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (VideoTranscript) TableName() string {
	return "video_transcripts"
}
