package engine

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// workerPool runs N worker goroutines draining a shared queue.
// Workers carry no per-shard affinity: any worker may process any job, so a
// dead worker never strands a job that was "assigned" only to it — the
// remaining workers simply keep popping from the shared queue. The one gap
// that needs explicit handling is every worker dying at once, which onExit
// closes by marking the queue dead and draining it, in one atomic step with
// any push still racing that exit.
type workerPool struct {
	q       *queue
	logger  zerolog.Logger
	metrics Metrics
	handle  func(*job)

	wg    sync.WaitGroup
	alive atomic.Int64
	dead  atomic.Bool // true once every worker has exited without a clean shutdown
}

func newWorkerPool(q *queue, n int, logger zerolog.Logger, metrics Metrics, handle func(*job)) *workerPool {
	wp := &workerPool{q: q, logger: logger, metrics: metrics, handle: handle}
	wp.alive.Store(int64(n))
	wp.wg.Add(n)
	for i := 0; i < n; i++ {
		go wp.run(i)
	}
	return wp
}

// isDead reports whether every worker has exited while the queue was still
// open, i.e. abnormal total failure rather than a graceful shutdown.
func (wp *workerPool) isDead() bool { return wp.dead.Load() }

func (wp *workerPool) run(id int) {
	defer wp.wg.Done()
	defer wp.onExit()

	for {
		j, ok := wp.q.pop()
		if !ok {
			return // queue closed and drained: graceful shutdown
		}
		if wp.execute(j) {
			wp.logger.Error().Int("worker", id).Msg("worker retiring after panic")
			return
		}
	}
}

// execute runs handle(j) and reports whether the worker must retire. A
// panic is recovered here, at the thread boundary, so it never escapes to
// crash the process; the affected job's sink is resolved with ErrWorkerGone
// before this goroutine exits.
func (wp *workerPool) execute(j *job) (retiring bool) {
	defer func() {
		if r := recover(); r != nil {
			j.sink.resolve(Result{Err: ErrWorkerGone})
			retiring = true
		}
	}()
	wp.handle(j)
	return false
}

// onExit runs in every worker's defer chain. When the last worker exits
// while the queue is still accepting jobs (i.e. not a requested shutdown),
// the pool is abnormally dead: every job still queued must resolve with
// ErrWorkerGone rather than hang forever waiting for a worker that will
// never arrive. markDeadAndDrain also poisons the queue against any job
// pushed after this point, so a push racing this exit can never be
// stranded — see queue.go.
func (wp *workerPool) onExit() {
	if wp.alive.Add(-1) != 0 {
		return
	}
	if wp.q.closedForShutdown() {
		return // graceful: Close() already drained everything via workers
	}
	wp.dead.Store(true)
	for _, j := range wp.q.markDeadAndDrain() {
		j.sink.resolve(Result{Err: ErrWorkerGone})
	}
}

// join waits for every worker goroutine to exit. Used during graceful
// shutdown after the queue has been closed.
func (wp *workerPool) join() { wp.wg.Wait() }
