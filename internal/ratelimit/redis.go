package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/kelaslive/kelaslive-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// fixedWindowScript mirrors Memory.Hit inside Redis so check-and-increment is
// a single atomic step. Returns {allowed, count, pttl}.
var fixedWindowScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
  redis.call('SET', KEYS[1], 1, 'PX', ARGV[2])
  return {1, 1, tonumber(ARGV[2])}
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('SET', KEYS[1], 1, 'PX', ARGV[2])
  return {1, 1, tonumber(ARGV[2])}
end
if tonumber(current) >= tonumber(ARGV[1]) then
  return {0, tonumber(current), ttl}
end
local n = redis.call('INCR', KEYS[1])
return {1, n, ttl}
`)

// Redis is a Store shared by every API replica.
type Redis struct {
	rdb *redis.Client
}

// NewRedis creates a Redis-backed store.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

// Hit implements Store.
func (r *Redis) Hit(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	vals, err := fixedWindowScript.Run(ctx, r.rdb,
		[]string{config.CacheKey.RateLimitKey(key)},
		limit, window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("run fixed window script: %w", err)
	}
	if len(vals) != 3 {
		return Result{}, fmt.Errorf("unexpected fixed window reply: %v", vals)
	}

	allowed, count, ttl := vals[0] == 1, int(vals[1]), time.Duration(vals[2])*time.Millisecond
	if !allowed {
		return Result{Allowed: false, Limit: limit, Remaining: 0, RetryAfter: retryAfterSeconds(ttl)}, nil
	}
	return Result{Allowed: true, Limit: limit, Remaining: limit - count}, nil
}
