package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"datasense-be/pkg/store"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type failingSearcher struct {
	err error
}

func (s *failingSearcher) Search(ctx context.Context, query string) ([]store.Document, error) {
	return nil, s.err
}

func TestCachedSearcher_SearchErrorIsNotCached(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	log, logs := observedLogger()
	boom := errors.New("engine unavailable")
	cached := NewCachedSearcher(&failingSearcher{err: boom}, rdb, time.Minute, log)

	docs, err := cached.Search(context.Background(), "q")
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, docs)
	assert.Zero(t, logs.FilterMessage("Cache write failed").Len())
}
