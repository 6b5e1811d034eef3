// Package callback adapts engine.Dispatcher to a fire-and-forget, callback
// style API: the caller supplies a func(engine.Result) that runs on an
// internal goroutine once the underlying job completes.
package callback

import (
	"time"

	"github.com/kvshard/filecache/engine"
)

// Store wraps an engine.Dispatcher with SetAsync/GetAsync/RemoveAsync
// methods. It does not block its caller: each method spawns exactly one
// goroutine to wait on the sink and invoke fn.
type Store struct {
	d engine.Dispatcher
}

// New wraps d.
func New(d engine.Dispatcher) *Store { return &Store{d: d} }

// SetAsync writes key=value with ttl, then calls fn with the result.
func (s *Store) SetAsync(key string, value []byte, ttl time.Duration, fn func(engine.Result)) {
	deliver(s.d.Set(key, value, ttl), fn)
}

// GetAsync reads key, then calls fn with the result.
func (s *Store) GetAsync(key string, fn func(engine.Result)) {
	deliver(s.d.Get(key), fn)
}

// RemoveAsync deletes key, then calls fn with the result.
func (s *Store) RemoveAsync(key string, fn func(engine.Result)) {
	deliver(s.d.Remove(key), fn)
}

// Close releases the underlying engine's resources.
func (s *Store) Close() error { return s.d.Close() }

func deliver(sink interface {
	Poll() <-chan engine.Result
}, fn func(engine.Result)) {
	go func() { fn(<-sink.Poll()) }()
}
