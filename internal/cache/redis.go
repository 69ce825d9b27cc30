// Package cache provides the optional Redis-backed dashboard cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coverline/agency-api/internal/config"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache wraps a Redis client for dashboard snapshot caching. A nil
// *Cache is valid and disables caching.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection. Returns nil when
// the cache is disabled in config.
func New(cfg *config.RedisConfig) (*Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{client: client, ttl: cfg.CacheTTLDuration()}, nil
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func dashboardKey(agencyID string) string {
	return "dashboard:metrics:" + agencyID
}

// GetDashboard reads a cached dashboard snapshot into dest.
func (c *Cache) GetDashboard(ctx context.Context, agencyID string, dest interface{}) error {
	if c == nil {
		return ErrCacheMiss
	}
	data, err := c.client.Get(ctx, dashboardKey(agencyID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to read dashboard cache: %w", err)
	}
	return json.Unmarshal(data, dest)
}

// SetDashboard caches a dashboard snapshot with the configured TTL.
func (c *Cache) SetDashboard(ctx context.Context, agencyID string, value interface{}) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard snapshot: %w", err)
	}
	if err := c.client.Set(ctx, dashboardKey(agencyID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write dashboard cache: %w", err)
	}
	return nil
}

// InvalidateDashboard drops the agency's cached snapshot. Called after
// any write that changes the aggregates.
func (c *Cache) InvalidateDashboard(ctx context.Context, agencyID string) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, dashboardKey(agencyID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate dashboard cache: %w", err)
	}
	return nil
}
