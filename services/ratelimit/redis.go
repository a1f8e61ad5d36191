// Package ratelimit provides the stores behind echo's rate limiter middleware.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/submitly/backend/core"
)

const keyPrefix = "submitly:ratelimit:"

type counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisStore is a fixed window counter shared by every API instance.
// At most limit requests per identifier are allowed in each window.
type RedisStore struct {
	rdb     counter
	limit   int64
	window  time.Duration
	timeout time.Duration
}

var _ middleware.RateLimiterStore = (*RedisStore)(nil)

func NewRedisStore(rdb *redis.Client, limit int, window time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, limit: int64(limit), window: window, timeout: 100 * time.Millisecond}
}

func (s *RedisStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	slot := core.NowFunc().UnixNano() / int64(s.window)
	key := fmt.Sprintf("%s%s:%d", keyPrefix, identifier, slot)

	n, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, errors.Wrap(err, "incrementing rate limit counter")
	}
	if n == 1 {
		if err := s.rdb.Expire(ctx, key, 2*s.window).Err(); err != nil {
			return false, errors.Wrap(err, "expiring rate limit counter")
		}
	}
	return n <= s.limit, nil
}

// NewStore returns the redis store when rdb is set, else echo's in-memory store, which only
// limits a single instance.
func NewStore(conf *core.Config, rdb *redis.Client) middleware.RateLimiterStore {
	if rdb != nil {
		return NewRedisStore(rdb, conf.Server.RateLimitBurst, time.Second)
	}
	return middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(conf.Server.RateLimit),
		Burst:     conf.Server.RateLimitBurst,
		ExpiresIn: 3 * time.Minute,
	})
}
