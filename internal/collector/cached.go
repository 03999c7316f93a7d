package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"StockScope/internal/model"
)

// RedisClient is the subset of the Redis client used for caching.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// CachedFetcher serves bars and profiles from Redis before calling the
// wrapped Fetcher. Cache failures are logged and never fail a fetch.
type CachedFetcher struct {
	next   Fetcher
	redis  RedisClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedFetcher wraps next with a Redis read-through cache.
func NewCachedFetcher(next Fetcher, client RedisClient, ttl time.Duration, logger *zap.Logger) *CachedFetcher {
	return &CachedFetcher{next: next, redis: client, ttl: ttl, logger: logger}
}

func (c *CachedFetcher) Name() string { return c.next.Name() + "+redis" }

func (c *CachedFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	key := fmt.Sprintf("bars:%s:%s:%d", c.next.Name(), symbol, days)
	var bars []model.OHLCV
	if c.load(ctx, key, &bars) {
		return bars, nil
	}
	bars, err := c.next.FetchDailyBars(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, bars)
	return bars, nil
}

func (c *CachedFetcher) FetchProfile(ctx context.Context, symbol string) (*model.Profile, error) {
	key := fmt.Sprintf("profile:%s:%s", c.next.Name(), symbol)
	var p model.Profile
	if c.load(ctx, key, &p) {
		return &p, nil
	}
	profile, err := c.next.FetchProfile(ctx, symbol)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, profile)
	return profile, nil
}

func (c *CachedFetcher) load(ctx context.Context, key string, out any) bool {
	data, err := c.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		c.logger.Warn("redis cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("redis cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CachedFetcher) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("redis cache write failed", zap.String("key", key), zap.Error(err))
	}
}
