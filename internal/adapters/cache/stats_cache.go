package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/floroz/ride-auction/internal/domain/lifecycle"
)

const (
	statsVersionKey = "auction:stats:version"
	statsKeyPrefix  = "auction:stats:v"
)

// RedisStatsCache stores the statistics projection under a generation counter.
// Invalidate bumps the generation, so a value computed before the bump is written
// under a key that is never read again.
type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStatsCache creates a stats cache with the given entry TTL
func NewRedisStatsCache(client *redis.Client, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{client: client, ttl: ttl}
}

// Get returns the cached stats for the current generation, or nil on a miss
func (c *RedisStatsCache) Get(ctx context.Context) (*lifecycle.AuctionStats, int64, error) {
	version, err := c.version(ctx)
	if err != nil {
		return nil, 0, err
	}

	raw, err := c.client.Get(ctx, statsKey(version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, version, nil
	}
	if err != nil {
		return nil, version, fmt.Errorf("failed to read stats: %w", err)
	}

	var stats lifecycle.AuctionStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, version, fmt.Errorf("failed to decode stats: %w", err)
	}
	return &stats, version, nil
}

// Set stores stats computed while version was current
func (c *RedisStatsCache) Set(ctx context.Context, version int64, stats *lifecycle.AuctionStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	if err := c.client.Set(ctx, statsKey(version), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write stats: %w", err)
	}
	return nil
}

// Invalidate starts a new generation
func (c *RedisStatsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, statsVersionKey).Err(); err != nil {
		return fmt.Errorf("failed to bump stats version: %w", err)
	}
	return nil
}

func (c *RedisStatsCache) version(ctx context.Context) (int64, error) {
	version, err := c.client.Get(ctx, statsVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read stats version: %w", err)
	}
	return version, nil
}

func statsKey(version int64) string {
	return statsKeyPrefix + strconv.FormatInt(version, 10)
}

// NoopStatsCache never holds anything. Used when Redis is not configured.
type NoopStatsCache struct{}

func (NoopStatsCache) Get(context.Context) (*lifecycle.AuctionStats, int64, error) {
	return nil, 0, nil
}

func (NoopStatsCache) Set(context.Context, int64, *lifecycle.AuctionStats) error { return nil }

func (NoopStatsCache) Invalidate(context.Context) error { return nil }
