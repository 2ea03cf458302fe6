package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edulearn/learner-gateway/internal/core/ports"
)

// ViewCache stores rendered read views as plain strings with a TTL.
type ViewCache struct {
	client redis.UniversalClient
}

func NewViewCache(client redis.UniversalClient) *ViewCache {
	return &ViewCache{client: client}
}

var _ ports.ViewCache = (*ViewCache)(nil)

func (c *ViewCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("view cache get: %w", err)
	}
	return b, true, nil
}

func (c *ViewCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("view cache set: %w", err)
	}
	return nil
}

// Invalidate deletes the given keys. Missing keys are not an error.
func (c *ViewCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("view cache invalidate: %w", err)
	}
	return nil
}
