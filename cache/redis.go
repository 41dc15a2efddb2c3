package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "warranty-dispatch:snapshot:"
	redisGenPrefix = "warranty-dispatch:generation:"
)

// RedisCache shares snapshots between instances through Redis
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache connects to Redis and verifies the connection with a ping
func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisCache{rdb: rdb, ttl: ttl}, nil
}

func (r *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s from redis: %w", key, err)
	}
	if err := decode(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value any) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, redisKeyPrefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s to redis: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Generation(ctx context.Context, key string) (uint64, error) {
	gen, err := readGeneration(ctx, r.rdb, key)
	if err != nil {
		return 0, fmt.Errorf("failed to read generation of %s from redis: %w", key, err)
	}
	return gen, nil
}

// SetIfGeneration watches the generation counter so an Invalidate that lands
// between the check and the write aborts the transaction.
func (r *RedisCache) SetIfGeneration(ctx context.Context, key string, gen uint64, value any) (bool, error) {
	data, err := encode(value)
	if err != nil {
		return false, err
	}

	stored := false
	err = r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx, key)
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, redisKeyPrefix+key, data, r.ttl)
			return nil
		})
		stored = err == nil
		return err
	}, redisGenPrefix+key)

	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to write %s to redis: %w", key, err)
	}
	return stored, nil
}

func (r *RedisCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Del(ctx, redisKeyPrefix+key)
			pipe.Incr(ctx, redisGenPrefix+key)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate %v in redis: %w", keys, err)
	}
	return nil
}

// Close releases the Redis connection pool
func (r *RedisCache) Close() error {
	return r.rdb.Close()
}

func readGeneration(ctx context.Context, cmd redis.Cmdable, key string) (uint64, error) {
	gen, err := cmd.Get(ctx, redisGenPrefix+key).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}
