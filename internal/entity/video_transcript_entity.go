package entity

import "time"

type VideoTranscript struct {
	Id             string
	Partner        string
	FileName       string
	VideoFilePath  string
	ThumbnailUri   string
	Transcript     string
	EmbeddingValue []float32
	Extra          map[string]interface{}
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
