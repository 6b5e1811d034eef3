package engine

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Engine is the user-facing façade over the cache root. It is
// adapter-agnostic: Set/Get/Remove enqueue a job and return a *replySink
// immediately, without blocking the caller. The three packages under
// github.com/kvshard/filecache/adapter translate that sink into a callback,
// a blocking call, or a channel a cooperative caller can select on.
type Engine struct {
	root    string
	locks   *lockTable
	queue   *queue
	pool    *workerPool
	janitor *janitor
	guard   *processGuard
	clock   Clock
	metrics Metrics
	logger  zerolog.Logger

	closed bool
}

// Build constructs an Engine: it ensures RootPath exists,
// acquires the process guard, allocates the fixed lock table, spawns
// workers, and starts the janitor. On any failure, everything already
// acquired is released before returning.
func Build(cfg Config) (*Engine, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	if err := ensureRootDir(cfg.RootPath); err != nil {
		return nil, err
	}

	guard, err := acquireGuard(cfg.RootPath)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		root:    cfg.RootPath,
		locks:   newLockTable(),
		queue:   newQueue(cfg.QueueCapacity),
		guard:   guard,
		clock:   cfg.Clock,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}

	e.pool = newWorkerPool(e.queue, cfg.WorkerCount, cfg.Logger, cfg.Metrics, e.handleJob)
	e.janitor = newJanitor(cfg.RootPath, cfg.CleanupInterval, e.locks, cfg.Clock, cfg.Metrics, cfg.Logger)
	e.janitor.start()

	e.logger.Info().
		Str("root", cfg.RootPath).
		Int("workers", cfg.WorkerCount).
		Dur("cleanup_interval", cfg.CleanupInterval).
		Msg("filecache engine started")

	return e, nil
}

func ensureRootDir(root string) error {
	info, err := os.Stat(root)
	if err == nil {
		if !info.IsDir() {
			return &invalidConfigError{reason: "RootPath exists and is not a directory"}
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return wrapIO("stat-root", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return wrapIO("mkdir-root", err)
	}
	return nil
}

// Set enqueues a write of key=value with the given TTL (<=0 means never
// expires) and returns a sink that resolves once the write lands.
func (e *Engine) Set(key string, value []byte, ttl time.Duration) *replySink {
	return e.submit(opSet, key, value, ttl)
}

// Get enqueues a read of key and returns a sink whose Result.Found reports
// presence.
func (e *Engine) Get(key string) *replySink {
	return e.submit(opGet, key, nil, 0)
}

// Remove enqueues a deletion of key. Removing an already-absent key is not
// an error.
func (e *Engine) Remove(key string) *replySink {
	return e.submit(opRemove, key, nil, 0)
}

// submit builds a job for key and pushes it onto the queue. push itself
// resolves the sink if the queue is closed or dead, so submit never needs
// to duplicate that decision — and never races it, since there is no
// separate isDead check between building the job and pushing it.
func (e *Engine) submit(op opKind, key string, value []byte, ttl time.Duration) *replySink {
	sink := newReplySink()
	j := &job{op: op, path: mapKey(e.root, key), value: value, ttl: ttl, sink: sink}
	e.queue.push(j)
	e.metrics.QueueDepth(e.queue.len())
	return sink
}

// handleJob is the worker-pool callback that actually performs the I/O
// primitive for j under the target shard's lock, releasing the lock before
// the result is delivered.
func (e *Engine) handleJob(j *job) {
	switch j.op {
	case opGet:
		e.locks.rlock(j.path.shard)
		res, err := readFile(j.path.path, e.clock.Now())
		e.locks.runlock(j.path.shard)
		if err != nil {
			j.sink.resolve(Result{Err: err})
			return
		}
		if res.found {
			e.metrics.Hit()
		} else {
			e.metrics.Miss()
		}
		j.sink.resolve(Result{Value: res.value, Found: res.found})

	case opSet:
		e.locks.lock(j.path.shard)
		err := writeFile(j.path.path, j.value, j.ttl, e.clock.Now())
		e.locks.unlock(j.path.shard)
		j.sink.resolve(Result{Err: err})

	case opRemove:
		e.locks.lock(j.path.shard)
		err := removeFile(j.path.path)
		e.locks.unlock(j.path.shard)
		j.sink.resolve(Result{Err: err})
	}
}

// Close stops accepting new jobs, drains already-enqueued ones, joins
// workers, stops the janitor, and releases the process guard — in that
// order, on every path.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	e.queue.close()
	e.pool.join()
	e.janitor.shutdown()
	err := e.guard.release()

	e.logger.Info().Str("root", e.root).Msg("filecache engine stopped")
	return err
}

// ForceSweep runs one janitor pass synchronously, bypassing the timer.
// Intended for offline tooling (cmd/filecachectl), not hot-path use.
func (e *Engine) ForceSweep() { e.janitor.sweepOnce() }
