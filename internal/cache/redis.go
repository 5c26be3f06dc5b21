package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis is a Store backed by a redis server, for deployments where several
// instances of the service must share one cache.
type Redis struct {
	C *redis.Client
}

// NewRedis builds a Redis store from connection parameters.
func NewRedis(addr, password string, db int) *Redis {
	return &Redis{C: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Ping verifies connectivity to the redis server.
func (r *Redis) Ping(ctx context.Context) error {
	return r.C.Ping(ctx).Err()
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.C.Close()
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.C.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}
	return b, nil
}

// Set implements Store.
func (r *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.C.Set(ctx, key, val, ttl).Err()
}

// DeletePrefix implements Store. Keys are enumerated with SCAN to avoid
// blocking the server on large keyspaces.
func (r *Redis) DeletePrefix(ctx context.Context, prefix string) error {
	iter := r.C.Scan(ctx, 0, prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 512 {
			if err := r.C.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.C.Del(ctx, keys...).Err()
	}
	return nil
}
