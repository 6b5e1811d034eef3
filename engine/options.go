package engine

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/kvshard/filecache/internal/util"
)

// Clock allows overriding the time source in tests.
type Clock interface{ Now() time.Time }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// defaultCleanupInterval is used when Config.CleanupInterval is unset.
const defaultCleanupInterval = 30 * time.Second

// Config configures an Engine. RootPath is the only required field; the
// rest have engine-defined defaults applied by Build.
type Config struct {
	// RootPath is the cache directory. It must exist (as a directory) or be
	// creatable.
	RootPath string

	// CleanupInterval is the wall-clock period between janitor ticks.
	// Defaults to 30s when zero.
	CleanupInterval time.Duration

	// WorkerCount is the number of worker goroutines. Defaults to a
	// GOMAXPROCS-derived heuristic when zero or negative.
	WorkerCount int

	// QueueCapacity bounds the job queue. Zero means unbounded, the
	// default: backpressure is left to the caller's concurrency model.
	QueueCapacity int

	// Logger receives structured lifecycle and janitor events. Never used
	// on the per-operation hot path. Defaults to a disabled logger.
	Logger zerolog.Logger

	// Metrics receives Hit/Miss/Reclaimed/QueueDepth/JanitorSweep signals.
	// Defaults to NoopMetrics.
	Metrics Metrics

	// Clock overrides the time source; nil uses the system clock.
	Clock Clock
}

// validate and fill in defaults, returning a sanitized copy.
func (c Config) withDefaults() (Config, error) {
	if c.RootPath == "" {
		return c, &invalidConfigError{reason: "RootPath must be set"}
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = defaultCleanupInterval
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = util.ReasonableWorkerCount()
	}
	if c.QueueCapacity < 0 {
		c.QueueCapacity = 0
	}
	if c.Metrics == nil {
		c.Metrics = NoopMetrics{}
	}
	if c.Clock == nil {
		c.Clock = systemClock{}
	}
	return c, nil
}

// invalidConfigError carries the reason a Config was rejected while still
// satisfying errors.Is(err, ErrInvalidConfig).
type invalidConfigError struct{ reason string }

func (e *invalidConfigError) Error() string {
	return "filecache: invalid configuration: " + e.reason
}
func (e *invalidConfigError) Is(target error) bool { return target == ErrInvalidConfig }
