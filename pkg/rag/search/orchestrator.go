package search

import (
	"context"
	"fmt"
	"path"

	"datasense-be/internal/pkg/logger"
	"datasense-be/internal/repository/contract"
	"datasense-be/internal/repository/specification"
	"datasense-be/internal/repository/unitofwork"
	"datasense-be/pkg/embedding"
	"datasense-be/pkg/store"
)

// Orchestrator runs vector similarity search over ingested video transcripts.
type Orchestrator struct {
	embeddingProvider embedding.EmbeddingProvider
	uowFactory        unitofwork.RepositoryFactory
	logger            logger.ILogger
	config            Config
}

// Config encapsulates search parameters
type Config struct {
	TopK int
}

// DefaultConfig returns default search configuration
func DefaultConfig() Config {
	return Config{TopK: 5}
}

func NewOrchestrator(
	embeddingProvider embedding.EmbeddingProvider,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
	config Config,
) *Orchestrator {
	if config.TopK <= 0 {
		config.TopK = DefaultConfig().TopK
	}
	return &Orchestrator{
		embeddingProvider: embeddingProvider,
		uowFactory:        uowFactory,
		logger:            log,
		config:            config,
	}
}

// Search returns the TopK transcripts nearest to query, best first.
func (o *Orchestrator) Search(ctx context.Context, query string) ([]store.VideoRecord, error) {
	embeddingRes, err := o.embeddingProvider.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	uow := o.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.VideoTranscriptRepository().SearchSimilarWithScore(
		ctx,
		embeddingRes.Embedding.Values,
		o.config.TopK,
		specification.HasEmbedding{},
	)
	if err != nil {
		o.logger.Error("VideoSearch", "Vector search failed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	records := ToVideoRecords(scored)
	o.logger.Debug("VideoSearch", "Vector search completed", map[string]interface{}{
		"query":   query,
		"results": len(records),
	})
	return records, nil
}

// ToVideoRecords converts scored rows to ranked records (rank 1 is best).
func ToVideoRecords(scored []*contract.ScoredVideoTranscript) []store.VideoRecord {
	records := make([]store.VideoRecord, 0, len(scored))
	for _, s := range scored {
		if s == nil || s.Transcript == nil {
			continue
		}
		t := s.Transcript
		fileName := t.FileName
		if fileName == "" {
			fileName = path.Base(t.VideoFilePath)
		}
		records = append(records, store.VideoRecord{
			ID:           t.Id,
			Partner:      t.Partner,
			CreatedAt:    t.CreatedAt,
			FileName:     fileName,
			VideoURI:     t.VideoFilePath,
			ThumbnailURI: t.ThumbnailUri,
			Transcript:   t.Transcript,
			Rank:         len(records) + 1,
			Similarity:   s.Similarity,
		})
	}
	return records
}
