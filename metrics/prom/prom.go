// Package prom exports hashtable metrics to Prometheus.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/chaintable/hashtable"
)

// Adapter implements hashtable.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe, so
// one Adapter may serve several tables (gauges then show the last writer).
type Adapter struct {
	hits     prometheus.Counter
	misses   prometheus.Counter
	rehashes *prometheus.CounterVec
	entries  prometheus.Gauge
	buckets  prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "lookup_hits_total",
			Help:        "Lookups that found their key",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "lookup_misses_total",
			Help:        "Lookups that did not find their key",
			ConstLabels: constLabels,
		}),
		rehashes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "rehashes_total",
				Help:        "Rehash attempts by outcome",
				ConstLabels: constLabels,
			},
			[]string{"event"},
		),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "entries",
			Help:        "Number of stored entries",
			ConstLabels: constLabels,
		}),
		buckets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "buckets",
			Help:        "Current bucket count",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.rehashes, a.entries, a.buckets)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Rehash counts a rehash attempt under its event label.
func (a *Adapter) Rehash(e hashtable.RehashEvent) {
	a.rehashes.WithLabelValues(e.String()).Inc()
}

// Size updates the entry and bucket gauges.
func (a *Adapter) Size(entries, buckets int) {
	a.entries.Set(float64(entries))
	a.buckets.Set(float64(buckets))
}

// Compile-time check: ensure Adapter implements hashtable.Metrics.
var _ hashtable.Metrics = (*Adapter)(nil)
