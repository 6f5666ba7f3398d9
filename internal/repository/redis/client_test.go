package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs only if REDIS_ADDR is set.
func TestRedisCacheIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}

	cache, err := InitRedis(addr, os.Getenv("REDIS_PASSWORD"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	ctx := context.Background()
	key := "tetrecs:test:" + time.Now().Format(time.RFC3339Nano)

	require.NoError(t, cache.Set(ctx, key, "1200", time.Minute))
	got, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "1200", got)

	require.NoError(t, cache.Del(ctx, key))
	_, err = cache.Get(ctx, key)
	assert.ErrorIs(t, err, redis.Nil)
}

func TestInitRedisUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping dial test in short mode")
	}
	cache, err := InitRedis("127.0.0.1:1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
	assert.Nil(t, cache)
}
