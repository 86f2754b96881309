package service

import (
	"context"
	"fmt"
	"time"

	"datasense-be/internal/entity"
	"datasense-be/internal/pkg/logger"
	"datasense-be/internal/repository/specification"
	"datasense-be/internal/repository/unitofwork"
)

type TranscriptStats struct {
	Total    int64
	Embedded int64
}

// ITranscriptService inspects and prunes the ingested video transcripts.
type ITranscriptService interface {
	Stats(ctx context.Context, partner string, since time.Time) (TranscriptStats, error)
	Show(ctx context.Context, id string) (*entity.VideoTranscript, error)
	Delete(ctx context.Context, ids []string) (int, error)
}

type transcriptService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewTranscriptService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) ITranscriptService {
	return &transcriptService{uowFactory: uowFactory, logger: log}
}

func (s *transcriptService) Stats(ctx context.Context, partner string, since time.Time) (TranscriptStats, error) {
	var specs []specification.Specification
	if partner != "" {
		specs = append(specs, specification.ByPartner{Partner: partner})
	}
	if !since.IsZero() {
		specs = append(specs, specification.CreatedAfter{Time: since})
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).VideoTranscriptRepository()

	total, err := repo.Count(ctx, specs...)
	if err != nil {
		return TranscriptStats{}, err
	}
	embedded, err := repo.Count(ctx, append(specs, specification.HasEmbedding{})...)
	if err != nil {
		return TranscriptStats{}, err
	}
	return TranscriptStats{Total: total, Embedded: embedded}, nil
}

// Show returns nil when no transcript has the id.
func (s *transcriptService) Show(ctx context.Context, id string) (*entity.VideoTranscript, error) {
	return s.uowFactory.NewUnitOfWork(ctx).VideoTranscriptRepository().FindOne(ctx, specification.ByID{ID: id})
}

// Delete removes all ids in one transaction and returns how many existed.
func (s *transcriptService) Delete(ctx context.Context, ids []string) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	deleted := 0
	for _, id := range ids {
		ok, err := uow.VideoTranscriptRepository().Delete(ctx, id)
		if err != nil {
			if rbErr := uow.Rollback(); rbErr != nil {
				s.logger.Warn("TranscriptService", "Rollback failed", map[string]interface{}{"error": rbErr.Error()})
			}
			return 0, fmt.Errorf("delete %s: %w", id, err)
		}
		if ok {
			deleted++
		}
	}

	if err := uow.Commit(); err != nil {
		return 0, err
	}

	s.logger.Info("TranscriptService", "Transcripts deleted", map[string]interface{}{
		"requested": len(ids),
		"deleted":   deleted,
	})
	return deleted, nil
}
