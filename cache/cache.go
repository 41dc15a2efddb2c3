// Package cache keeps record snapshots between requests.
//
// Snapshots are stored as JSON so every Get hands the caller its own copy.
// Writers invalidate the affected key after a successful mutation and the next
// read reloads it from the store. Every key carries a generation that
// Invalidate bumps; a load that started before an invalidation is never
// written back.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/kendall-kelly/warranty-dispatch-api/logger"
)

// Snapshot keys
const (
	KeyOrders      = "orders"
	KeyTechnicians = "technicians"
)

// Cache stores encoded snapshots by key
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	// Generation returns the number of times key has been invalidated
	Generation(ctx context.Context, key string) (uint64, error)
	// SetIfGeneration stores value only while key is still at generation gen
	SetIfGeneration(ctx context.Context, key string, gen uint64, value any) (bool, error)
	Invalidate(ctx context.Context, keys ...string) error
}

// Fetch returns the snapshot cached under key, loading and caching it on a miss.
// A cache that fails to read or write is bypassed, not fatal.
func Fetch[T any](ctx context.Context, c Cache, key string, load func(context.Context) (T, error)) (T, error) {
	var value T
	if hit, err := c.Get(ctx, key, &value); err == nil && hit {
		return value, nil
	}

	gen, genErr := c.Generation(ctx, key)
	value, err := load(ctx)
	if err != nil || genErr != nil {
		return value, err
	}
	if stored, err := c.SetIfGeneration(ctx, key, gen, value); err == nil && !stored {
		logger.L().Debug("snapshot invalidated during load, not cached", zap.String("key", key))
	}
	return value, nil
}

// SetOnSuccess invalidates keys when a mutation succeeded and passes its
// result through unchanged. The mutation is already committed at that point,
// so a failed invalidation is logged and not returned.
func SetOnSuccess[T any](ctx context.Context, c Cache, result T, err error, keys ...string) (T, error) {
	if err != nil {
		return result, err
	}
	if invErr := c.Invalidate(ctx, keys...); invErr != nil {
		logger.L().Error("failed to invalidate snapshots after write",
			zap.Strings("keys", keys),
			zap.Error(invErr))
	}
	return result, nil
}

func encode(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

func decode(data []byte, dest any) error {
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return nil
}
