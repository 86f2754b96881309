package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"datasense-be/internal/dto"
	"datasense-be/internal/entity"
	"datasense-be/internal/pkg/logger"
	"datasense-be/internal/repository/contract"
	"datasense-be/internal/repository/unitofwork"
	"datasense-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `id,partner,created_at,video_file_path,transcript,thumbnail_uri,language
f79e6bbc,Hearst Television,2025-04-19T13:50:46.193881,gs://videos/innovation.mp4,"transcript: Welcome to the Innovation Nation.",gs://thumbs/innovation.jpg,en
f3b08f26,Hearst Television,2025-04-19 13:50:39,gs://videos/dogs.mp4,"transcript: I'm Brandon McMillan, and for 7 years",,
bad-date,Hearst Television,yesterday,gs://videos/x.mp4,text,,
missing-transcript,Hearst Television,2025-04-19,gs://videos/y.mp4,,,
`

type recordingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

func TestParseTranscriptCSV(t *testing.T) {
	rows, rejected, err := ParseTranscriptCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "f79e6bbc", rows[0].Id)
	assert.Equal(t, "Hearst Television", rows[0].Partner)
	assert.Equal(t, time.Date(2025, 4, 19, 13, 50, 46, 193881000, time.UTC), rows[0].CreatedAt)
	assert.Equal(t, "gs://thumbs/innovation.jpg", rows[0].ThumbnailUri)
	assert.Equal(t, map[string]interface{}{"language": "en"}, rows[0].Extra)
	assert.Equal(t, time.Date(2025, 4, 19, 13, 50, 39, 0, time.UTC), rows[1].CreatedAt)
	assert.Nil(t, rows[1].Extra)

	require.Len(t, rejected, 2)
	assert.Equal(t, 4, rejected[0].Line)
	assert.Contains(t, rejected[0].Error(), "created_at")
	assert.Equal(t, 5, rejected[1].Line)
}

func TestParseTranscriptCSV_MissingColumns(t *testing.T) {
	_, _, err := ParseTranscriptCSV(strings.NewReader("id,partner\n1,x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created_at")
	assert.Contains(t, err.Error(), "transcript")
}

func TestIngestCSV_PublishesValidRows(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewIngestService(pub, logger.NewNopLogger())

	report, err := svc.IngestCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 4, report.Rows)
	assert.Equal(t, 2, report.Published)
	assert.Len(t, report.Rejected, 2)

	var first dto.PublishVideoTranscriptMessage
	require.NoError(t, json.Unmarshal(pub.payloads[0], &first))
	assert.Equal(t, "f79e6bbc", first.Id)
}

func TestIngestCSV_PublishFailureStops(t *testing.T) {
	boom := errors.New("bus closed")
	svc := NewIngestService(&recordingPublisher{err: boom}, logger.NewNopLogger())

	report, err := svc.IngestCSV(context.Background(), strings.NewReader(sampleCSV))
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, report.Published)
}

type ingestEmbedder struct {
	mu    sync.Mutex
	tasks []string
	err   error
}

func (e *ingestEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tasks = append(e.tasks, taskType)
	if e.err != nil {
		return nil, e.err
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.6, 0.8}}}, nil
}

type memoryTranscriptRepo struct {
	contract.VideoTranscriptRepository
	mu        sync.Mutex
	rows      map[string]*entity.VideoTranscript
	deleteErr error
}

func (r *memoryTranscriptRepo) Upsert(ctx context.Context, t *entity.VideoTranscript) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[t.Id] = t
	return nil
}

type memoryUoW struct {
	unitofwork.UnitOfWork
	repo *memoryTranscriptRepo

	began, committed, rolledBack bool
}

func (u *memoryUoW) VideoTranscriptRepository() contract.VideoTranscriptRepository { return u.repo }

type memoryFactory struct{ uow *memoryUoW }

func (f *memoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

func TestIngestPipeline_EmbedsAndUpserts(t *testing.T) {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermill.NopLogger{},
	)
	repo := &memoryTranscriptRepo{rows: map[string]*entity.VideoTranscript{}}
	embedder := &ingestEmbedder{}

	consumer := NewConsumerService(pubSub, "ingest", &memoryFactory{uow: &memoryUoW{repo: repo}}, embedder, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(context.Background()))

	ingest := NewIngestService(NewPublisherService("ingest", pubSub), logger.NewNopLogger())
	report, err := ingest.IngestCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Published)

	require.NoError(t, pubSub.Close())
	consumer.Wait()

	assert.Equal(t, ConsumerStats{Processed: 2}, consumer.Stats())
	require.Len(t, repo.rows, 2)

	row := repo.rows["f79e6bbc"]
	assert.Equal(t, "innovation.mp4", row.FileName)
	assert.Equal(t, []float32{0.6, 0.8}, row.EmbeddingValue)
	assert.Equal(t, "en", row.Extra["language"])
	assert.Equal(t, []string{embedding.TaskRetrievalDocument, embedding.TaskRetrievalDocument}, embedder.tasks)
}

func TestIngestPipeline_EmbeddingFailureIsCounted(t *testing.T) {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermill.NopLogger{},
	)
	repo := &memoryTranscriptRepo{rows: map[string]*entity.VideoTranscript{}}
	consumer := NewConsumerService(pubSub, "ingest", &memoryFactory{uow: &memoryUoW{repo: repo}},
		&ingestEmbedder{err: errors.New("quota")}, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(context.Background()))

	_, err := NewIngestService(NewPublisherService("ingest", pubSub), logger.NewNopLogger()).
		IngestCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	require.NoError(t, pubSub.Close())
	consumer.Wait()

	assert.Equal(t, ConsumerStats{Failed: 2}, consumer.Stats())
	assert.Empty(t, repo.rows)
}
