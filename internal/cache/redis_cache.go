package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const courseListKey = "catalog:courses"

// RedisCatalogCache implements CatalogCache on a single redis instance.
type RedisCatalogCache struct {
	client *redis.Client
	ctx    context.Context
	ttl    time.Duration
}

func NewRedisCatalogCache(redisURL string, ttl time.Duration) (*RedisCatalogCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCatalogCache{
		client: client,
		ctx:    ctx,
		ttl:    ttl,
	}, nil
}

// NewRedisCatalogCacheWithClient wraps an existing client (shared with the
// rate limiter).
func NewRedisCatalogCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCatalogCache {
	return &RedisCatalogCache{
		client: client,
		ctx:    context.Background(),
		ttl:    ttl,
	}
}

func (c *RedisCatalogCache) GetCourseList() ([]byte, error) {
	payload, err := c.client.Get(c.ctx, courseListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *RedisCatalogCache) SetCourseList(payload []byte) error {
	return c.client.Set(c.ctx, courseListKey, payload, c.ttl).Err()
}

func (c *RedisCatalogCache) Invalidate() error {
	return c.client.Del(c.ctx, courseListKey).Err()
}

func (c *RedisCatalogCache) Close() error {
	return c.client.Close()
}
