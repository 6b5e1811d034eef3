package engine

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// recordingMetrics captures every call for assertions, guarded by a mutex
// since the janitor and worker pool can both report concurrently.
type recordingMetrics struct {
	mu         sync.Mutex
	reclaimed  []EvictReason
	queueDepth []int
}

func (m *recordingMetrics) Hit()  {}
func (m *recordingMetrics) Miss() {}
func (m *recordingMetrics) Reclaimed(r EvictReason) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reclaimed = append(m.reclaimed, r)
}
func (m *recordingMetrics) QueueDepth(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueDepth = append(m.queueDepth, n)
}
func (m *recordingMetrics) JanitorSweep(time.Duration, int) {}

func (m *recordingMetrics) countReclaimed(reason EvictReason) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.reclaimed {
		if r == reason {
			n++
		}
	}
	return n
}

func TestJanitor_SweepOnceReclaimsExpiredEntry(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	clock := newManualClock(time.Unix(100_000, 0))

	shard := 0
	dir := filepath.Join(root, shardDirName(shard))
	path := filepath.Join(dir, "deadbeef")
	if err := writeFile(path, []byte("v"), time.Second, clock.Now()); err != nil {
		t.Fatalf("writeFile: %v", err)
	}

	clock.Advance(2 * time.Second)
	j := newJanitor(root, time.Hour, newLockTable(), clock, NoopMetrics{}, zerolog.Nop())
	j.sweepOnce()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expired entry's file must have been removed by the sweep")
	}
}

func TestJanitor_SkipsContendedShard(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	clock := newManualClock(time.Unix(0, 0))
	locks := newLockTable()

	dir := filepath.Join(root, shardDirName(0))
	path := filepath.Join(dir, "deadbeef")
	if err := writeFile(path, []byte("v"), time.Nanosecond, clock.Now()); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	// A sub-second TTL rounds up to a 1s deadline, which only counts as
	// passed once the clock is strictly beyond it.
	clock.Advance(2 * time.Second)

	locks.lock(0) // simulate an in-flight user operation holding shard 0
	j := newJanitor(root, time.Hour, locks, clock, NoopMetrics{}, zerolog.Nop())
	j.sweepOnce()
	locks.unlock(0)

	// The contended shard must have been skipped rather than blocked on.
	res, err := readFile(path, clock.Now())
	if err != nil {
		t.Fatalf("readFile: %v", err)
	}
	if res.found {
		t.Fatal("entry is expired and should report not found on read regardless of the sweep")
	}
}

func TestJanitor_ReportsCorruptAndTTLReasonsSeparately(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	clock := newManualClock(time.Unix(100_000, 0))

	dir := filepath.Join(root, shardDirName(0))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	expired := filepath.Join(dir, "expired")
	if err := writeFile(expired, []byte("v"), time.Second, clock.Now()); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	corrupt := filepath.Join(dir, "corrupt")
	if err := os.WriteFile(corrupt, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("WriteFile corrupt: %v", err)
	}

	clock.Advance(2 * time.Second)
	metrics := &recordingMetrics{}
	j := newJanitor(root, time.Hour, newLockTable(), clock, metrics, zerolog.Nop())
	j.sweepOnce()

	if got := metrics.countReclaimed(EvictTTL); got != 1 {
		t.Fatalf("expected 1 EvictTTL report, got %d", got)
	}
	if got := metrics.countReclaimed(EvictCorrupt); got != 1 {
		t.Fatalf("expected 1 EvictCorrupt report, got %d", got)
	}
}

func TestJanitor_StartAndShutdown(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	clock := newManualClock(time.Unix(0, 0))
	j := newJanitor(root, time.Millisecond, newLockTable(), clock, NoopMetrics{}, zerolog.Nop())
	j.start()
	time.Sleep(20 * time.Millisecond)
	j.shutdown() // must return promptly, not hang
}
