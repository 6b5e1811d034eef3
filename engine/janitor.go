package engine

import (
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// janitor is the dedicated timer goroutine that sweeps shards for expired
// and corrupt entries in the background. It never runs through the worker
// pool: its whole point is to never queue behind, or be queued behind by,
// user operations.
type janitor struct {
	root     string
	interval time.Duration
	locks    *lockTable
	clock    Clock
	metrics  Metrics
	logger   zerolog.Logger

	stop chan struct{}
	done chan struct{}

	// cursor is not read or advanced: every sweep starts at shard 0 and
	// visits shards in order up to ShardCount-1, so a skipped busy shard is
	// retried on the next tick.
	cursor int
}

func newJanitor(root string, interval time.Duration, locks *lockTable, clock Clock, metrics Metrics, logger zerolog.Logger) *janitor {
	return &janitor{
		root:     root,
		interval: interval,
		locks:    locks,
		clock:    clock,
		metrics:  metrics,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (j *janitor) start() {
	go j.loop()
}

func (j *janitor) loop() {
	defer close(j.done)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stop:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

// sweep visits every shard once, attempting a non-blocking exclusive
// acquisition per shard. Shards that are contended are skipped and
// revisited on the next tick; this is what guarantees the janitor never
// adds latency to a hot shard.
func (j *janitor) sweep() {
	start := j.clock.Now()
	var total reclaimCounts

	for i := 0; i < ShardCount; i++ {
		shard := i
		if !j.locks.tryLock(shard) {
			continue
		}
		dir := filepath.Join(j.root, shardDirName(shard))
		counts, err := scanShard(dir, j.clock.Now())
		j.locks.unlock(shard)
		if err != nil {
			j.logger.Warn().Err(err).Str("shard", shardDirName(shard)).Msg("janitor scan failed")
			continue
		}
		total.ttl += counts.ttl
		total.corrupt += counts.corrupt
	}

	for i := 0; i < total.ttl; i++ {
		j.metrics.Reclaimed(EvictTTL)
	}
	for i := 0; i < total.corrupt; i++ {
		j.metrics.Reclaimed(EvictCorrupt)
	}

	j.metrics.JanitorSweep(j.clock.Now().Sub(start), total.total())
	if total.total() > 0 {
		j.logger.Debug().
			Int("reclaimed_ttl", total.ttl).
			Int("reclaimed_corrupt", total.corrupt).
			Msg("janitor sweep complete")
	}
}

// sweepOnce runs a single pass synchronously, used by cmd/filecachectl to
// force an offline cleanup without waiting for the timer.
func (j *janitor) sweepOnce() { j.sweep() }

func (j *janitor) shutdown() {
	close(j.stop)
	<-j.done
}
