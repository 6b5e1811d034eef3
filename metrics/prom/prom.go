// Package prom adapts engine.Metrics onto Prometheus collectors.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kvshard/filecache/engine"
	"github.com/kvshard/filecache/internal/util"
)

// Adapter implements engine.Metrics and exports counters/gauges/a histogram
// to Prometheus. Safe for concurrent use: the Prometheus collectors are
// goroutine-safe on their own, and the local mirrors below use the
// cache-line-padded atomic counters from internal/util so that many workers
// incrementing Hit/Miss concurrently never false-share a cache line.
type Adapter struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	reclaimed *prometheus.CounterVec
	queueLen  prometheus.Gauge
	sweepDur  prometheus.Histogram
	sweepN    prometheus.Gauge

	// Local mirrors, queryable without a scrape round-trip by whatever
	// process constructed this Adapter (cmd/filecached logs them
	// periodically; see Snapshot).
	localHits   util.PaddedAtomicUint64
	localMisses util.PaddedAtomicUint64
}

// New constructs a Prometheus metrics adapter.
//   - reg:         registry to register metrics with (nil => prometheus.DefaultRegisterer)
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
			Name:        "hits_total",
			Help:        "Cache hits",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Cache misses",
			ConstLabels: constLabels,
		}),
		reclaimed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "reclaimed_total",
				Help:        "Entries removed by the janitor, by reason",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		queueLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "queue_depth",
			Help:        "Pending jobs in the dispatch queue",
			ConstLabels: constLabels,
		}),
		sweepDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "janitor_sweep_seconds",
			Help:        "Wall-clock duration of a full janitor sweep",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}),
		sweepN: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "janitor_last_sweep_reclaimed",
			Help:        "Entries reclaimed on the most recent janitor sweep",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.reclaimed, a.queueLen, a.sweepDur, a.sweepN)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() {
	a.hits.Inc()
	a.localHits.Add(1)
}

// Miss increments the miss counter.
func (a *Adapter) Miss() {
	a.misses.Inc()
	a.localMisses.Add(1)
}

// Reclaimed increments the reclaim counter with a reason label.
func (a *Adapter) Reclaimed(r engine.EvictReason) {
	a.reclaimed.WithLabelValues(reason(r)).Inc()
}

// QueueDepth sets the current pending-job gauge.
func (a *Adapter) QueueDepth(n int) { a.queueLen.Set(float64(n)) }

// JanitorSweep records one completed sweep's duration and reclaim count.
func (a *Adapter) JanitorSweep(d time.Duration, reclaimed int) {
	a.sweepDur.Observe(d.Seconds())
	a.sweepN.Set(float64(reclaimed))
}

// Snapshot returns the local hit/miss mirrors without a Prometheus scrape
// round-trip, for in-process introspection by whatever built this Adapter.
func (a *Adapter) Snapshot() (hits, misses uint64) {
	return a.localHits.Load(), a.localMisses.Load()
}

func reason(r engine.EvictReason) string {
	switch r {
	case engine.EvictTTL:
		return "ttl"
	case engine.EvictCorrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

var _ engine.Metrics = (*Adapter)(nil)
