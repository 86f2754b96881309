package embedding

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedProvider memoizes embeddings per (task type, text). Repeated premium
// queries skip the embedding round trip.
type CachedProvider struct {
	next  EmbeddingProvider
	cache *cache.Cache
}

func NewCachedProvider(next EmbeddingProvider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (p *CachedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	key := taskType + "\x00" + text
	if x, found := p.cache.Get(key); found {
		return x.(*EmbeddingResponse), nil
	}

	res, err := p.next.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, res, cache.DefaultExpiration)
	return res, nil
}
