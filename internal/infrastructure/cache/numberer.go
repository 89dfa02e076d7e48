package cache

import (
	"context"
	"fmt"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SequenceStore is the durable copy of the counters. Redis numbers are
// written through to it and a missing key is seeded from it.
type SequenceStore interface {
	Current(ctx context.Context, tenantID uuid.UUID, kind shared.DocumentKind) (int64, error)
	Advance(ctx context.Context, tenantID uuid.UUID, kind shared.DocumentKind, value int64) error
}

// incrExisting increments a counter only when it is already present
var incrExisting = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return redis.call("INCR", KEYS[1])
end
return -1
`)

// RedisDocumentNumberer issues numbers with INCR so concurrent checkouts do not
// queue behind a row lock. Numbers taken by a transaction that later rolls back
// are not reused, so series may have gaps.
type RedisDocumentNumberer struct {
	client *redis.Client
	store  SequenceStore
}

// NewRedisDocumentNumberer creates a numberer. store may be nil, in which case
// counters live only in Redis.
func NewRedisDocumentNumberer(client *redis.Client, store SequenceStore) *RedisDocumentNumberer {
	return &RedisDocumentNumberer{client: client, store: store}
}

func sequenceKey(tenantID uuid.UUID, kind shared.DocumentKind) string {
	return fmt.Sprintf("%sseq:%s:%s", keyPrefix, tenantID, kind)
}

// Next returns the next number of the series
func (n *RedisDocumentNumberer) Next(ctx context.Context, tenantID uuid.UUID, kind shared.DocumentKind) (string, error) {
	key := sequenceKey(tenantID, kind)

	value, err := incrExisting.Run(ctx, n.client, []string{key}).Int64()
	if err != nil {
		return "", fmt.Errorf("failed to increment %s: %w", key, err)
	}
	if value < 0 {
		if value, err = n.seed(ctx, key, tenantID, kind); err != nil {
			return "", err
		}
	}

	if n.store != nil {
		if err := n.store.Advance(ctx, tenantID, kind, value); err != nil {
			return "", err
		}
	}
	return shared.FormatDocumentNumber(kind, value), nil
}

// seed creates the key from the durable counter and takes the first number.
// SetNX lets only one caller seed; everyone increments afterwards.
func (n *RedisDocumentNumberer) seed(ctx context.Context, key string, tenantID uuid.UUID, kind shared.DocumentKind) (int64, error) {
	var floor int64
	if n.store != nil {
		current, err := n.store.Current(ctx, tenantID, kind)
		if err != nil {
			return 0, err
		}
		floor = current
	}
	if err := n.client.SetNX(ctx, key, floor, 0).Err(); err != nil {
		return 0, fmt.Errorf("failed to seed %s: %w", key, err)
	}
	value, err := n.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", key, err)
	}
	return value, nil
}

var _ shared.DocumentNumberer = (*RedisDocumentNumberer)(nil)
