package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"
	"sync/atomic"
	"time"

	"datasense-be/internal/dto"
	"datasense-be/internal/entity"
	"datasense-be/internal/pkg/logger"
	"datasense-be/internal/repository/unitofwork"
	"datasense-be/pkg/embedding"
	"datasense-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	transcriptChunkSize    = 6000
	transcriptChunkOverlap = 400
)

// ConsumerStats counts messages handled since the consumer started.
type ConsumerStats struct {
	Processed int64
	Failed    int64
}

type IConsumerService interface {
	Consume(ctx context.Context) error
	// Wait blocks until the subscription channel is closed and drained.
	Wait()
	Stats() ConsumerStats
}

type consumerService struct {
	subscriber        message.Subscriber
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	logger            logger.ILogger

	processed atomic.Int64
	failed    atomic.Int64
	wg        sync.WaitGroup
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:        subscriber,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		logger:            log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	cs.wg.Add(1)
	go func() {
		defer cs.wg.Done()
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) Wait() {
	cs.wg.Wait()
}

func (cs *consumerService) Stats() ConsumerStats {
	return ConsumerStats{Processed: cs.processed.Load(), Failed: cs.failed.Load()}
}

// processMessage always acks. Upserts are idempotent, so a failed row is
// reported and fixed by re-running the ingestion.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.PublishVideoTranscriptMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.failed.Add(1)
		cs.logger.Error("IngestConsumer", "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	if err := cs.ingest(ctx, payload); err != nil {
		cs.failed.Add(1)
		cs.logger.Error("IngestConsumer", "Failed to ingest transcript", map[string]interface{}{
			"id":    payload.Id,
			"error": err.Error(),
		})
		return
	}

	cs.processed.Add(1)
	cs.logger.Info("IngestConsumer", "Transcript ingested", map[string]interface{}{
		"id":      payload.Id,
		"partner": payload.Partner,
	})
}

func (cs *consumerService) ingest(ctx context.Context, payload dto.PublishVideoTranscriptMessage) error {
	vector, chunks, err := cs.embedTranscript(ctx, payload.Transcript)
	if err != nil {
		return err
	}

	fileName := payload.FileName
	if fileName == "" {
		fileName = path.Base(payload.VideoFilePath)
	}
	createdAt := payload.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	extra := payload.Extra
	if extra == nil {
		extra = map[string]interface{}{}
	}
	extra["embedding_chunks"] = chunks

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	return uow.VideoTranscriptRepository().Upsert(ctx, &entity.VideoTranscript{
		Id:             payload.Id,
		Partner:        payload.Partner,
		FileName:       fileName,
		VideoFilePath:  payload.VideoFilePath,
		ThumbnailUri:   payload.ThumbnailUri,
		Transcript:     payload.Transcript,
		EmbeddingValue: vector,
		Extra:          extra,
		CreatedAt:      createdAt,
	})
}

// embedTranscript embeds long transcripts chunk by chunk and stores the
// normalized mean, so each video keeps a single vector.
func (cs *consumerService) embedTranscript(ctx context.Context, transcript string) ([]float32, int, error) {
	chunks := utils.SplitText(transcript, transcriptChunkSize, transcriptChunkOverlap)

	vectors := make([][]float32, 0, len(chunks))
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(ctx, chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			return nil, 0, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		vectors = append(vectors, res.Embedding.Values)
	}

	if len(vectors) == 1 {
		return vectors[0], 1, nil
	}
	mean := utils.MeanVector(vectors)
	if mean == nil {
		return nil, 0, fmt.Errorf("embedding chunks have inconsistent dimensions")
	}
	return mean, len(vectors), nil
}
