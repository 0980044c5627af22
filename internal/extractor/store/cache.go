package store

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/forge-io/agentforge/pkg/component/redis"
)

// RedisCache Redis 键值缓存，用于 URL 解析结果。
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a cache on the given redis client.
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// Get returns the cached value and whether the key was present.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Client().Get(ctx, c.prefix+key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

// Set stores a value with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Client().Set(ctx, c.prefix+key, value, ttl).Err()
}
