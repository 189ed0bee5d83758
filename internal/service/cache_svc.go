package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/schhatbar/PriorityPoll/internal/metrics"
)

const (
	PollCacheTTL        = 30 * time.Second
	LeaderboardCacheTTL = time.Minute

	leaderboardKey        = "leaderboard:top"
	leaderboardVersionKey = "leaderboard:version"
)

// CacheService provides a Redis cache-aside layer for poll and leaderboard reads.
// A nil *CacheService, or one without a client, turns every operation into a no-op.
type CacheService struct {
	rdb *redis.Client
}

// NewCacheService creates a new CacheService. If redisURL is empty or connection
// fails, it returns a CacheService with a nil client (cache operations become no-ops).
func NewCacheService(redisURL string) *CacheService {
	if redisURL == "" {
		log.Info().Msg("redis: no URL configured, caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis: invalid URL, caching disabled")
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis: connection failed, caching disabled")
		_ = rdb.Close()
		return &CacheService{}
	}

	log.Info().Msg("redis: connected, caching enabled")
	return &CacheService{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	if c == nil {
		return nil
	}
	return c.rdb
}

func (c *CacheService) enabled() bool {
	return c != nil && c.rdb != nil
}

// get decodes the cached value at key into dst and reports whether it was present.
func (c *CacheService) get(ctx context.Context, key string, dst any) (bool, error) {
	if !c.enabled() {
		return false, nil
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.Metrics.CacheMisses.Inc()
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		metrics.Metrics.CacheMisses.Inc()
		return false, err
	}
	metrics.Metrics.CacheHits.Inc()
	return true, nil
}

func (c *CacheService) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !c.enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

func (c *CacheService) del(ctx context.Context, key string) error {
	if !c.enabled() {
		return nil
	}
	return c.rdb.Del(ctx, key).Err()
}

// GetPoll loads a cached poll into dst.
func (c *CacheService) GetPoll(ctx context.Context, pollID int64, dst any) (bool, error) {
	return c.get(ctx, pollKey(pollID), dst)
}

// SetPoll stores a poll in cache.
func (c *CacheService) SetPoll(ctx context.Context, pollID int64, poll any) error {
	return c.set(ctx, pollKey(pollID), poll, PollCacheTTL)
}

// InvalidatePoll removes a poll from cache (called after votes and status changes).
func (c *CacheService) InvalidatePoll(ctx context.Context, pollID int64) error {
	return c.del(ctx, pollKey(pollID))
}

// GetLeaderboard loads the cached top profiles into dst.
func (c *CacheService) GetLeaderboard(ctx context.Context, dst any) (bool, error) {
	return c.get(ctx, leaderboardKey, dst)
}

// LeaderboardVersion returns the current leaderboard generation. Every
// InvalidateLeaderboard bumps it.
func (c *CacheService) LeaderboardVersion(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	v, err := c.rdb.Get(ctx, leaderboardVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// SetLeaderboard stores the top profiles in cache, but only while the
// leaderboard generation still equals version. It reports whether the
// snapshot was written.
func (c *CacheService) SetLeaderboard(ctx context.Context, version int64, top any) (bool, error) {
	if !c.enabled() {
		return false, nil
	}
	b, err := json.Marshal(top)
	if err != nil {
		return false, err
	}

	stored := false
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, leaderboardVersionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, leaderboardKey, b, LeaderboardCacheTTL)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, leaderboardVersionKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return stored, err
}

// InvalidateLeaderboard bumps the leaderboard generation and removes the
// cached snapshot.
func (c *CacheService) InvalidateLeaderboard(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, leaderboardVersionKey)
		pipe.Del(ctx, leaderboardKey)
		return nil
	})
	return err
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if !c.enabled() {
		return nil
	}
	return c.rdb.Close()
}

func pollKey(pollID int64) string {
	return fmt.Sprintf("poll:%d", pollID)
}
