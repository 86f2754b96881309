package store

import "time"

// VideoRecord is a video transcript returned by similarity search, ordered by Rank.
type VideoRecord struct {
	ID           string    `json:"id"`
	Partner      string    `json:"partner"`
	CreatedAt    time.Time `json:"created_at"`
	FileName     string    `json:"file_name"`
	VideoURI     string    `json:"video_file_path"`
	ThumbnailURI string    `json:"thumbnail_uri"`
	Transcript   string    `json:"page_content"`
	Rank         int       `json:"rank"`
	Similarity   float64   `json:"similarity"`
}
