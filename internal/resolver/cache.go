package resolver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "resolver:url:"

// RedisCache stores the winning URL per identifier in Redis. Failures are
// logged and treated as cache misses; the resolver falls back to the full
// candidate search.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "resolver_cache"),
	}
}

func (c *RedisCache) Get(ctx context.Context, identifier string) (string, bool) {
	val, err := c.client.Get(ctx, cacheKeyPrefix+identifier).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", "item", identifier, "error", err)
		}
		return "", false
	}
	return val, true
}

func (c *RedisCache) Put(ctx context.Context, identifier, url string) {
	if err := c.client.Set(ctx, cacheKeyPrefix+identifier, url, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "item", identifier, "error", err)
	}
}
