package database

import (
	"context"
	"fmt"
	"time"

	"github.com/kelaslive/kelaslive-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewRedisClient opens a Redis client for the shared rate limit store and
// waits until the server answers a ping.
func NewRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opt.DialTimeout = 3 * time.Second
	opt.ReadTimeout = time.Second
	opt.WriteTimeout = time.Second

	rdb := redis.NewClient(opt)
	err = connectWithRetry(ctx, log, "redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Msg("Redis connected")

	return rdb, nil
}

// RedisPinger reports whether the client can still reach the server.
func RedisPinger(rdb *redis.Client) Pinger {
	return Pinger{
		Name: "redis",
		Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}
}
