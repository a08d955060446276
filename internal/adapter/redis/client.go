// Package redis holds the Redis-backed adapters: the ordered score store
// behind the leaderboard and the short-lived statistics cache. Connectivity
// failures map to domain.ErrUnavailable so callers can degrade instead of
// failing gameplay.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/flagwars/backend/internal/config"
	"github.com/flagwars/backend/internal/domain"
)

// NewClient creates a go-redis client from RedisConfig and pings it for
// fail-fast validation.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// mapError converts go-redis errors to domain errors.
// redis.Nil → domain.ErrNotFound; everything else → domain.ErrUnavailable,
// keeping the driver error in the chain for logging.
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}

	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrUnavailable)
}
