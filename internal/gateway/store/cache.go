package store

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/forge-io/agentforge/pkg/component/redis"
)

// AnswerCache Redis 缓存，按问题哈希存储已生成的回答。
type AnswerCache struct {
	client *redis.Client
	prefix string
}

// NewAnswerCache creates a cache on the given redis client.
func NewAnswerCache(client *redis.Client, prefix string) *AnswerCache {
	return &AnswerCache{client: client, prefix: prefix}
}

// Get returns the cached value and whether the key was present.
func (c *AnswerCache) Get(ctx context.Context, key string) (string, bool, error) {
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
func (c *AnswerCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Client().Set(ctx, c.prefix+key, value, ttl).Err()
}
