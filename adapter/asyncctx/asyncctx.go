// Package asyncctx adapts engine.Dispatcher to a cooperatively-suspending
// surface: each method returns a <-chan engine.Result immediately, letting
// the caller select on it alongside other work instead of blocking a
// goroutine or committing to a callback. Go has no native async/await, so
// this is the idiomatic stand-in, built directly on the job/replySink
// machinery in engine/job.go.
package asyncctx

import (
	"time"

	"github.com/kvshard/filecache/engine"
)

// Store wraps an engine.Dispatcher with channel-returning methods.
type Store struct {
	d engine.Dispatcher
}

// New wraps d.
func New(d engine.Dispatcher) *Store { return &Store{d: d} }

// Set enqueues a write and returns a channel that receives exactly one
// Result once it completes.
func (s *Store) Set(key string, value []byte, ttl time.Duration) <-chan engine.Result {
	return s.d.Set(key, value, ttl).Poll()
}

// Get enqueues a read and returns a channel that receives exactly one
// Result once it completes.
func (s *Store) Get(key string) <-chan engine.Result {
	return s.d.Get(key).Poll()
}

// Remove enqueues a deletion and returns a channel that receives exactly
// one Result once it completes.
func (s *Store) Remove(key string) <-chan engine.Result {
	return s.d.Remove(key).Poll()
}

// Close releases the underlying engine's resources.
func (s *Store) Close() error { return s.d.Close() }
