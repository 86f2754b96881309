package contract

import (
	"context"

	"datasense-be/internal/entity"
	"datasense-be/internal/repository/specification"
)

// ScoredVideoTranscript wraps VideoTranscript with its similarity score
type ScoredVideoTranscript struct {
	Transcript *entity.VideoTranscript
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type VideoTranscriptRepository interface {
	Upsert(ctx context.Context, transcript *entity.VideoTranscript) error
	Delete(ctx context.Context, id string) (bool, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.VideoTranscript, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore returns the limit nearest transcripts by cosine distance, best first.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, specs ...specification.Specification) ([]*ScoredVideoTranscript, error)
}
