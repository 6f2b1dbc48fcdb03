package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kekspay-gateway/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// SettingsCache implements ports.SettingsCache using Redis. Values are the
// sealed settings as stored in PostgreSQL.
type SettingsCache struct {
	client *goredis.Client
	key    string
}

// NewSettingsCache creates a new Redis-backed settings cache.
func NewSettingsCache(client *goredis.Client) *SettingsCache {
	return &SettingsCache{
		client: client,
		key:    "kekspay:settings",
	}
}

// Get returns the cached settings. Returns nil, nil on a miss.
func (c *SettingsCache) Get(ctx context.Context) (*domain.Settings, error) {
	val, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis settings get: %w", err)
	}

	var s domain.Settings
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, fmt.Errorf("redis settings decode: %w", err)
	}
	return &s, nil
}

// Set caches settings with TTL.
func (c *SettingsCache) Set(ctx context.Context, s *domain.Settings, ttl time.Duration) error {
	val, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("redis settings encode: %w", err)
	}
	if err := c.client.Set(ctx, c.key, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis settings set: %w", err)
	}
	return nil
}

// Invalidate drops the cached settings.
func (c *SettingsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("redis settings invalidate: %w", err)
	}
	return nil
}
