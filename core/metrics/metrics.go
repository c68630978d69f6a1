package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "food_index",
	Subsystem: "cache",
	Name:      "lookups_total",
	Help:      "Batch cache key lookups by namespace and outcome (hit, miss).",
}, []string{"namespace", "result"})

var CacheResolves = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "food_index",
	Subsystem: "cache",
	Name:      "resolver_calls_total",
	Help:      "Resolver invocations for missing keys, by namespace.",
}, []string{"namespace"})

var GatewayCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "food_index",
	Subsystem: "gateway",
	Name:      "calls_total",
	Help:      "Index gateway calls by kind (search, rebuild) and result.",
}, []string{"kind", "result"})

var GatewayCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "food_index",
	Subsystem: "gateway",
	Name:      "call_duration_seconds",
	Help:      "Round trip time of index gateway calls.",
	Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5, 30, 120},
}, []string{"kind"})

var GatewayPending = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: "food_index",
	Subsystem: "gateway",
	Name:      "pending_calls",
	Help:      "Calls waiting for a worker reply.",
})

var IndexReady = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: "food_index",
	Subsystem: "gateway",
	Name:      "ready",
	Help:      "1 when the index accepts searches, 0 otherwise.",
})

var WorkerGenerations = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "food_index",
	Subsystem: "worker",
	Name:      "generations_total",
	Help:      "Generation outcomes per locale (installed, superseded).",
}, []string{"locale", "result"})

var InvalidationDrains = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "food_index",
	Subsystem: "invalidation",
	Name:      "drains_total",
	Help:      "Pending rebuild set drains by trigger (notice, reconcile) and result.",
}, []string{"trigger", "result"})

// Register adds every collector of this package to reg.
// Collectors already registered are skipped so tests may call it repeatedly.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		CacheLookups,
		CacheResolves,
		GatewayCalls,
		GatewayCallDuration,
		GatewayPending,
		IndexReady,
		WorkerGenerations,
		InvalidationDrains,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}
