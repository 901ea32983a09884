// Package cache provides the Redis access layer for install counters.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultScanCount is the COUNT hint passed to HSCAN.
const DefaultScanCount = 100

// hashCommander is the subset of redis.Cmdable the counters use.
type hashCommander interface {
	HIncrBy(ctx context.Context, key, field string, incr int64) *redis.IntCmd
	HScan(ctx context.Context, key string, cursor uint64, match string, count int64) *redis.ScanCmd
}

// Cache provides Redis access methods.
type Cache struct {
	client    *redis.Client
	hash      hashCommander
	scanCount int64
}

// New creates a new Cache with a Redis client.
// A non-positive scanCount selects DefaultScanCount.
func New(ctx context.Context, redisURL string, scanCount int64) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Connection pool settings
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	c := newWithCommander(client, scanCount)
	c.client = client
	return c, nil
}

func newWithCommander(hash hashCommander, scanCount int64) *Cache {
	if scanCount <= 0 {
		scanCount = DefaultScanCount
	}
	return &Cache{hash: hash, scanCount: scanCount}
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	if c.client == nil {
		return errors.New("redis client not configured")
	}
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
