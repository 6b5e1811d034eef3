package prom

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/kvshard/filecache/engine"
)

func TestAdapter_HitMissUpdatesLocalMirrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New(reg, "filecache", "test", nil)

	a.Hit()
	a.Hit()
	a.Miss()

	hits, misses := a.Snapshot()
	require.Equal(t, uint64(2), hits)
	require.Equal(t, uint64(1), misses)
}

func TestAdapter_ReclaimedLabelsByReason(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New(reg, "filecache", "test", nil)

	a.Reclaimed(engine.EvictTTL)
	a.Reclaimed(engine.EvictCorrupt)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	found := map[string]bool{}
	for _, mf := range mfs {
		if mf.GetName() != "filecache_test_reclaimed_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "reason" {
					found[lp.GetValue()] = true
				}
			}
		}
	}
	require.True(t, found["ttl"])
	require.True(t, found["corrupt"])
}

func TestAdapter_QueueDepthAndSweep(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New(reg, "filecache", "test", nil)

	a.QueueDepth(7)
	a.JanitorSweep(50*time.Millisecond, 3)

	// Exercising through the engine.Metrics interface, as the engine does.
	var m engine.Metrics = a
	m.Hit()
	hits, _ := a.Snapshot()
	require.Equal(t, uint64(1), hits)
}
