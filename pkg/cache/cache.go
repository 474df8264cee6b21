package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs
const (
	TTLArticle      = 10 * time.Minute // published articles change only via approval
	TTLStatusCounts = 1 * time.Minute  // reviewer dashboard counts
	TTLDefault      = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixArticle      = "article:"
	PrefixStatusCounts = "revision:status_counts"
)

// Service is the Redis-backed cache used outside the workflow core. A nil
// client degrades every operation to a no-op so the API keeps working when
// Redis is down.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	GetArticle(ctx context.Context, articleID string, dest interface{}) error
	SetArticle(ctx context.Context, articleID string, data interface{}) error
	InvalidateArticle(ctx context.Context, articleID string) error

	GetStatusCounts(ctx context.Context, dest interface{}) error
	SetStatusCounts(ctx context.Context, data interface{}) error
	InvalidateStatusCounts(ctx context.Context) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a new cache service
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// IsAvailable reports whether a Redis client is configured
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Ping tests the Redis connection
func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

// Get reads and unmarshals a cached value
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return fmt.Errorf("redis not available")
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Set marshals and stores a value
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes keys
func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) articleKey(articleID string) string {
	return PrefixArticle + articleID
}

func (c *redisCache) GetArticle(ctx context.Context, articleID string, dest interface{}) error {
	return c.Get(ctx, c.articleKey(articleID), dest)
}

func (c *redisCache) SetArticle(ctx context.Context, articleID string, data interface{}) error {
	return c.Set(ctx, c.articleKey(articleID), data, TTLArticle)
}

func (c *redisCache) InvalidateArticle(ctx context.Context, articleID string) error {
	return c.Delete(ctx, c.articleKey(articleID))
}

func (c *redisCache) GetStatusCounts(ctx context.Context, dest interface{}) error {
	return c.Get(ctx, PrefixStatusCounts, dest)
}

func (c *redisCache) SetStatusCounts(ctx context.Context, data interface{}) error {
	return c.Set(ctx, PrefixStatusCounts, data, TTLStatusCounts)
}

func (c *redisCache) InvalidateStatusCounts(ctx context.Context) error {
	return c.Delete(ctx, PrefixStatusCounts)
}
