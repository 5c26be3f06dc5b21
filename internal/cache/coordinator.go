package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medkarta/go-clinic-backend/internal/metrics"
)

// Coordinator is the read-through cache front of the entity store. All
// methods are safe on a nil receiver: a nil coordinator simply forwards every
// read to its loader and ignores invalidation, so callers never branch on
// cache presence.
type Coordinator struct {
	Store Store
	TTL   time.Duration
}

// New returns a coordinator over the given backend with a default TTL.
func New(store Store, ttl time.Duration) *Coordinator {
	return &Coordinator{Store: store, TTL: ttl}
}

// GetThrough fills dest from the cache when possible, otherwise runs load
// (which must fill dest itself) and stores the JSON-encoded result.
//
// Backend failures are advisory: a broken Get degrades to a miss, a broken
// Set is logged and dropped. Loader errors are returned verbatim and nothing
// is cached, so negative results never poison the cache.
func (c *Coordinator) GetThrough(ctx context.Context, kind, key string, dest any, load func(ctx context.Context) error) error {
	if c == nil || c.Store == nil {
		return load(ctx)
	}

	k := Key(kind, key)
	if b, err := c.Store.Get(ctx, k); err == nil {
		if uerr := json.Unmarshal(b, dest); uerr == nil {
			metrics.CacheHits.WithLabelValues(kind).Inc()
			return nil
		}
		// Undecodable entry: treat as miss and overwrite below.
	}
	metrics.CacheMisses.WithLabelValues(kind).Inc()

	if err := load(ctx); err != nil {
		return err
	}

	if b, err := json.Marshal(dest); err == nil {
		if serr := c.Store.Set(ctx, k, b, c.TTL); serr != nil {
			metrics.Errors.WithLabelValues("cache_set").Inc()
			log.Warn().Err(serr).Str("key", k).Msg("cache set failed")
		}
	}
	return nil
}

// InvalidateKind evicts every cache entry of an entity kind. Mutating
// operations call this only after their transaction has committed, so a
// concurrent reader can never repopulate the cache from a pre-write snapshot.
func (c *Coordinator) InvalidateKind(ctx context.Context, kind string) {
	if c == nil || c.Store == nil {
		return
	}
	if err := c.Store.DeletePrefix(ctx, kind+":"); err != nil {
		metrics.Errors.WithLabelValues("cache_invalidate").Inc()
		log.Warn().Err(err).Str("kind", kind).Msg("cache invalidation failed")
		return
	}
	metrics.CacheInvalidations.WithLabelValues(kind).Inc()
}
