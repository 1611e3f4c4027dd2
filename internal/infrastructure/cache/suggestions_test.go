package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/St1cky1/task-service/internal/entity"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestCache требует Redis на TEST_REDIS_ADDR (по умолчанию localhost:6379), иначе тест пропускается.
func setupTestCache(t *testing.T, prefix string) *SuggestionCache {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available at %s: %v", addr, err)
	}

	c := NewSuggestionCache(client, prefix, time.Minute)
	require.NoError(t, c.Invalidate(ctx))
	t.Cleanup(func() {
		c.Invalidate(ctx)
		client.Close()
	})
	return c
}

var window = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func TestNewSuggestionCacheDefaultPrefix(t *testing.T) {
	c := NewSuggestionCache(nil, "", time.Minute)
	assert.Equal(t, DefaultPrefix+"1792411200:5", c.key(5, window))
}

func TestSuggestionCacheRoundTrip(t *testing.T) {
	c := setupTestCache(t, "test:suggest:roundtrip:")
	ctx := context.Background()

	_, ok, err := c.Get(ctx, 3, window)
	require.NoError(t, err)
	assert.False(t, ok)

	want := []entity.Suggestion{
		{SuggestedTitle: "Budget Review", SuggestedDescription: "d", ConfidenceScore: 0.8, Reasoning: "r"},
	}
	require.NoError(t, c.Set(ctx, 3, window, want))

	got, ok, err := c.Get(ctx, 3, window)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	// другой limit - отдельная запись
	_, ok, err = c.Get(ctx, 4, window)
	require.NoError(t, err)
	assert.False(t, ok)

	// как и следующее окно часов
	_, ok, err = c.Get(ctx, 3, window.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)

	stats := c.Snapshot()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(3), stats.Misses)
	assert.Equal(t, uint64(1), stats.Sets)
}

func TestSuggestionCacheInvalidate(t *testing.T) {
	c := setupTestCache(t, "test:suggest:invalidate:")
	ctx := context.Background()

	for _, limit := range []int{1, 5, 10} {
		require.NoError(t, c.Set(ctx, limit, window, []entity.Suggestion{{SuggestedTitle: "x"}}))
	}
	require.NoError(t, c.Invalidate(ctx))

	for _, limit := range []int{1, 5, 10} {
		_, ok, err := c.Get(ctx, limit, window)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}
