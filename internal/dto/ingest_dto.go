package dto

import "time"

// PublishVideoTranscriptMessage is one ingestion row travelling on the
// ingest topic.
type PublishVideoTranscriptMessage struct {
	Id            string                 `json:"id" validate:"required"`
	Partner       string                 `json:"partner" validate:"required"`
	CreatedAt     time.Time              `json:"created_at"`
	VideoFilePath string                 `json:"video_file_path" validate:"required"`
	FileName      string                 `json:"file_name"`
	ThumbnailUri  string                 `json:"thumbnail_uri"`
	Transcript    string                 `json:"transcript" validate:"required"`
	Extra         map[string]interface{} `json:"extra,omitempty"`
}
