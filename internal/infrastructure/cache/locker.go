package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// RedisLocker hands out short-lived locks shared by every server instance
type RedisLocker struct {
	locker *redislock.Client
}

// NewRedisLocker creates a locker on the given client
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{locker: redislock.New(client)}
}

// Obtain takes the lock without retrying. A held key yields shared.ErrLockNotObtained.
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lock, err := l.locker.Obtain(ctx, keyPrefix+"lock:"+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, shared.ErrLockNotObtained.WithDetail("key", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, nil
}
