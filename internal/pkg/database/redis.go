package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// ConnectRedisWithRetry pings Redis until it answers or maxRetries is reached.
func ConnectRedisWithRetry(ctx context.Context, opts RedisOptions, maxRetries int, wait time.Duration, logger *slog.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		if lastErr = rdb.Ping(ctx).Err(); lastErr == nil {
			logger.Info("connected to redis", "addr", opts.Addr)
			return rdb, nil
		}
		logger.Warn("redis ping failed", "attempt", i, "max_retries", maxRetries, "error", lastErr)

		select {
		case <-ctx.Done():
			rdb.Close()
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	rdb.Close()
	return nil, fmt.Errorf("redis connection failed after %d retries: %w", maxRetries, lastErr)
}
