package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 3 * time.Second

// RedisCache is the score service's cache, backed by one redis client.
type RedisCache struct {
	client *redis.Client
	addr   string
}

// InitRedis dials addr and verifies it with a ping. On failure the client is
// closed and an error returned; callers serve scores without a cache.
func InitRedis(addr, password string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	log.Printf("[REDIS] Connected to %s, caching high scores", addr)
	return &RedisCache{client: client, addr: addr}, nil
}

func (r *RedisCache) Close() error {
	log.Printf("[REDIS] Closing connection to %s", r.addr)
	return r.client.Close()
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

// Get returns redis.Nil for a missing key.
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *RedisCache) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}
