package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"datasense-be/internal/pkg/logger"
	"datasense-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "docsearch:"

// CachedSearcher fronts a Searcher with Redis. Cache failures are logged and
// never fail a search.
type CachedSearcher struct {
	next   Searcher
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.ILogger
}

func NewCachedSearcher(next Searcher, rdb *redis.Client, ttl time.Duration, log logger.ILogger) *CachedSearcher {
	return &CachedSearcher{next: next, rdb: rdb, ttl: ttl, logger: log}
}

func CacheKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *CachedSearcher) Search(ctx context.Context, query string) ([]store.Document, error) {
	key := CacheKey(query)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var docs []store.Document
		if jsonErr := json.Unmarshal(raw, &docs); jsonErr == nil {
			return docs, nil
		}
		c.logger.Warn("DocumentSearch", "Discarding undecodable cache entry", map[string]interface{}{"key": key})
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("DocumentSearch", "Cache read failed", map[string]interface{}{"error": err.Error()})
	}

	docs, err := c.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(docs); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("DocumentSearch", "Cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return docs, nil
}
