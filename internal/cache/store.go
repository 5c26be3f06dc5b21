// Package cache implements the read-through cache coordinator sitting in
// front of the entity store. The coordinator is advisory: the core behaves
// identically with a nil coordinator, it only loses the performance layer.
//
// Keys are namespaced by entity kind ("doctor:<id>", "doctor:allActive", …)
// and invalidation is deliberately coarse: any successful mutation of a kind
// evicts every key of that kind. For medical data a stale read is never
// acceptable, so correctness is prioritized over hit-rate precision.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by a Store when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Store is the minimal backend contract of the coordinator. Two backends are
// provided: an in-process TTL map (Memory) and redis (Redis).
type Store interface {
	// Get returns the value stored under key or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores val under key for at most ttl. A non-positive ttl means
	// no expiry.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error

	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// Key derives the namespaced cache key for an entity kind and lookup key.
func Key(kind, key string) string { return kind + ":" + key }
