package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"datasense-be/pkg/store"

	"cloud.google.com/go/discoveryengine/apiv1/discoveryenginepb"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ServingConfigAndEndpoint(t *testing.T) {
	cfg := Config{ProjectNumber: "123", Location: "global", EngineID: "engine-1"}
	assert.Equal(t,
		"projects/123/locations/global/collections/default_collection/engines/engine-1/servingConfigs/default_config",
		cfg.ServingConfig(),
	)
	assert.Empty(t, cfg.Endpoint())

	cfg.Location = "eu"
	assert.Equal(t, "eu-discoveryengine.googleapis.com:443", cfg.Endpoint())
}

func TestBuildRequest(t *testing.T) {
	cfg := Config{ProjectNumber: "123", Location: "global", EngineID: "e", PageSize: 5}
	req := BuildRequest(cfg, "dog breeds")

	assert.Equal(t, "dog breeds", req.Query)
	assert.Equal(t, int32(5), req.PageSize)
	assert.True(t, req.GetContentSearchSpec().GetSnippetSpec().GetReturnSnippet())
	assert.Equal(t, int32(5), req.GetContentSearchSpec().GetExtractiveContentSpec().GetMaxExtractiveSegmentCount())
	summary := req.GetContentSearchSpec().GetSummarySpec()
	assert.Equal(t, int32(5), summary.GetSummaryResultCount())
	assert.True(t, summary.GetIncludeCitations())
	assert.True(t, summary.GetIgnoreAdversarialQuery())
	assert.True(t, summary.GetIgnoreNonSummarySeekingQuery())
	assert.Equal(t, discoveryenginepb.SearchRequest_QueryExpansionSpec_AUTO, req.GetQueryExpansionSpec().GetCondition())
	assert.Equal(t, discoveryenginepb.SearchRequest_SpellCorrectionSpec_AUTO, req.GetSpellCorrectionSpec().GetMode())
}

type stubSearcher struct {
	calls int
	docs  []store.Document
}

func (s *stubSearcher) Search(ctx context.Context, query string) ([]store.Document, error) {
	s.calls++
	return s.docs, nil
}

func TestCachedSearcher_FallsThroughWhenRedisIsDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	inner := &stubSearcher{docs: []store.Document{{Title: "d1"}}}
	log, logs := observedLogger()
	cached := NewCachedSearcher(inner, rdb, time.Minute, log)

	docs, err := cached.Search(context.Background(), "dogs")
	require.NoError(t, err)
	assert.Equal(t, []store.Document{{Title: "d1"}}, docs)
	assert.Equal(t, 1, inner.calls)
	assert.GreaterOrEqual(t, logs.FilterMessage("Cache read failed").Len(), 1)
}

func TestCacheKey_IsStable(t *testing.T) {
	assert.Equal(t, CacheKey("dogs"), CacheKey("dogs"))
	assert.NotEqual(t, CacheKey("dogs"), CacheKey("cats"))
	assert.Contains(t, CacheKey("dogs"), "docsearch:")
}

var _ Searcher = (*Service)(nil)
var _ Searcher = (*CachedSearcher)(nil)

func TestLoadCredentials_Errors(t *testing.T) {
	_, err := LoadCredentials(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read search credentials")

	path := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))
	_, err = LoadCredentials(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse search credentials")
}
