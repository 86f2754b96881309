package retrieval

import (
	"context"
	"fmt"
	"time"

	"datasense-be/internal/pkg/logger"
	"datasense-be/pkg/store"

	"golang.org/x/sync/errgroup"
)

type VideoRetriever interface {
	Search(ctx context.Context, query string) ([]store.VideoRecord, error)
}

type DocumentRetriever interface {
	Search(ctx context.Context, query string) ([]store.Document, error)
}

// Result holds both retrieval result sets, each in rank order.
type Result struct {
	Videos    []store.VideoRecord
	Documents []store.Document
}

// FanIn queries the video store and the document index concurrently and
// joins both. Either failure fails the whole retrieval.
type FanIn struct {
	videos    VideoRetriever
	documents DocumentRetriever
	timeout   time.Duration
	logger    logger.ILogger
}

func NewFanIn(videos VideoRetriever, documents DocumentRetriever, timeout time.Duration, log logger.ILogger) *FanIn {
	return &FanIn{videos: videos, documents: documents, timeout: timeout, logger: log}
}

func (f *FanIn) Retrieve(ctx context.Context, query string) (Result, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	start := time.Now()
	var result Result

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		videos, err := f.videos.Search(gctx, query)
		if err != nil {
			return fmt.Errorf("video retrieval: %w", err)
		}
		result.Videos = videos
		return nil
	})
	g.Go(func() error {
		docs, err := f.documents.Search(gctx, query)
		if err != nil {
			return fmt.Errorf("document retrieval: %w", err)
		}
		result.Documents = docs
		return nil
	})

	if err := g.Wait(); err != nil {
		f.logger.Error("RetrievalFanIn", "Retrieval failed", map[string]interface{}{
			"error":       err.Error(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return Result{}, err
	}

	f.logger.Info("RetrievalFanIn", "Retrieval completed", map[string]interface{}{
		"videos":      len(result.Videos),
		"documents":   len(result.Documents),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return result, nil
}
