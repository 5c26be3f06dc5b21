// Package metrics exposes the Prometheus instruments of the clinic core.
// Instruments are registered once on the default registry at package load;
// the embedding process decides how to expose them (e.g. promhttp).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clinic"

var (
	// CacheHits counts read-through cache hits per entity kind.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "The total number of cache hits",
	}, []string{"kind"})

	// CacheMisses counts read-through cache misses per entity kind.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "The total number of cache misses",
	}, []string{"kind"})

	// CacheInvalidations counts coarse per-kind evictions.
	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_invalidations_total",
		Help:      "The total number of per-kind cache evictions",
	}, []string{"kind"})

	// ScheduleConflicts counts appointment writes rejected for overlapping
	// an existing active appointment.
	ScheduleConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "schedule_conflicts_total",
		Help:      "The total number of rejected overlapping appointment writes",
	})

	// CardChangesRecorded counts audit entries appended to the card history.
	CardChangesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "card_changes_recorded_total",
		Help:      "The total number of patient card audit entries written",
	})

	// Errors counts unexpected storage failures per operation.
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "errors_total",
		Help:      "The total number of unexpected errors",
	}, []string{"operation"})
)
