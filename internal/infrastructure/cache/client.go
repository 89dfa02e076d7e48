// Package cache holds the Redis backed helpers: the connection, a document
// numberer, a distributed locker and the notification stream.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/retail/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "retail:"

// NewClient connects to Redis and checks the connection with a ping
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Connect returns a client when Redis is configured and reachable. A missing
// configuration returns nil without error. An unreachable server is an error
// unless allowFallback is set, in which case it is logged and nil is returned.
func Connect(cfg config.RedisConfig, allowFallback bool, logger *zap.Logger) (*redis.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled() {
		logger.Info("Redis not configured, using database numbering and no distributed locks")
		return nil, nil
	}

	client, err := NewClient(cfg)
	if err != nil {
		if !allowFallback {
			return nil, err
		}
		logger.Warn("Redis unavailable, falling back to database numbering",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return nil, nil
	}

	logger.Info("Connected to Redis", zap.String("addr", cfg.Addr()), zap.Int("db", cfg.DB))
	return client, nil
}
