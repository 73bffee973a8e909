package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores the latest summary.
type Cache interface {
	Get(ctx context.Context) (Summary, bool, error)
	Set(ctx context.Context, s Summary) error
}

// RedisCache keeps the summary under one key with a TTL so the API and the
// worker share it.
type RedisCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, key string, ttl time.Duration) *RedisCache {
	if key == "" {
		key = "school:dashboard"
	}
	return &RedisCache{client: client, key: key, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context) (Summary, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Summary{}, false, nil
	}
	if err != nil {
		return Summary{}, false, err
	}
	var s Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		return Summary{}, false, err
	}
	return s, true, nil
}

func (c *RedisCache) Set(ctx context.Context, s Summary) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, raw, c.ttl).Err()
}

// MemoryCache is the single-process cache.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	value   Summary
	expires time.Time
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now}
}

func (c *MemoryCache) Get(context.Context) (Summary, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expires.IsZero() || !c.now().Before(c.expires) {
		return Summary{}, false, nil
	}
	return c.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, s Summary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = s
	c.expires = c.now().Add(c.ttl)
	return nil
}
