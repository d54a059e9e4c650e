package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"checkout-service/cache"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with e.g. REDIS_TEST_URL=redis://localhost:6379 go test ./cache/...
func setupCache(t *testing.T) *cache.EventCache {
	t.Helper()

	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set, skipping Redis integration tests")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	return cache.NewEventCache(redis.NewClient(opts), time.Minute)
}

func TestEventCache_SeenAfterMark(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()
	eventID := "evt_" + uuid.NewString()

	seen, err := c.Seen(ctx, eventID)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, c.MarkProcessed(ctx, eventID))

	seen, err = c.Seen(ctx, eventID)
	require.NoError(t, err)
	assert.True(t, seen)
}
