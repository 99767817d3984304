package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/docqa/internal/docqa/pipeline"
	"github.com/kart-io/docqa/internal/model"
)

func setupCache(t *testing.T) (*pipeline.QueryCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	cache := pipeline.NewQueryCache(client, &pipeline.QueryCacheConfig{
		Enabled:   true,
		TTL:       time.Minute,
		KeyPrefix: "docqa:query:",
	})
	return cache, mr
}

func TestQueryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache, _ := setupCache(t)

	result := &model.QueryResult{
		Answer:  "port 8083",
		Score:   0.87,
		Context: "The service listens on port 8083 by default.",
		Sources: []model.ChunkSource{{Source: "https://docs.example.com/install.md", Score: 0.9}},
	}
	require.NoError(t, cache.Set(ctx, "what port", result))

	cached, err := cache.Get(ctx, "what port")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, result.Answer, cached.Answer)
	assert.Equal(t, result.Sources[0].Source, cached.Sources[0].Source)
}

func TestQueryCacheMiss(t *testing.T) {
	cache, _ := setupCache(t)

	cached, err := cache.Get(context.Background(), "never asked")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestQueryCacheCorruptEntryDropped(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupCache(t)

	require.NoError(t, cache.Set(ctx, "question", &model.QueryResult{Answer: "a"}))

	// Corrupt the stored value behind the cache's back.
	var key string
	for _, k := range mr.Keys() {
		key = k
	}
	require.NotEmpty(t, key)
	require.NoError(t, mr.Set(key, "{not json"))

	_, err := cache.Get(ctx, "question")
	assert.Error(t, err)
	assert.Empty(t, mr.Keys())
}

func TestQueryCacheClear(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupCache(t)

	require.NoError(t, cache.Set(ctx, "one", &model.QueryResult{Answer: "1"}))
	require.NoError(t, cache.Set(ctx, "two", &model.QueryResult{Answer: "2"}))
	require.Len(t, mr.Keys(), 2)

	require.NoError(t, cache.Clear(ctx))
	assert.Empty(t, mr.Keys())
}

func TestQueryCacheDisabled(t *testing.T) {
	cache := pipeline.NewQueryCache(nil, nil)

	_, err := cache.Get(context.Background(), "question")
	assert.Error(t, err)
	assert.NoError(t, cache.Set(context.Background(), "question", &model.QueryResult{}))
}

func TestQueryCacheStats(t *testing.T) {
	ctx := context.Background()
	cache, _ := setupCache(t)

	require.NoError(t, cache.Set(ctx, "one", &model.QueryResult{Answer: "1"}))

	stats, err := cache.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, true, stats["enabled"])
	assert.Equal(t, 1, stats["key_count"])
}
