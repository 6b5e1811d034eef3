// Package blocking adapts engine.Dispatcher to the conventional blocking
// Set/Get/Remove surface most library consumers reach for first.
package blocking

import (
	"context"
	"time"

	"github.com/kvshard/filecache/engine"
)

// Store wraps an engine.Dispatcher with blocking methods, waiting on each
// job's reply sink with ctx.
type Store struct {
	d engine.Dispatcher
}

// New wraps d.
func New(d engine.Dispatcher) *Store { return &Store{d: d} }

// Set writes key=value with ttl (<=0 never expires) and blocks until the
// write lands or ctx is cancelled.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	res := s.d.Set(key, value, ttl).Wait(ctx)
	return res.Err
}

// Get reads key, blocking until the result is ready or ctx is cancelled.
// found reports whether the key was present and unexpired.
func (s *Store) Get(ctx context.Context, key string) (value []byte, found bool, err error) {
	res := s.d.Get(key).Wait(ctx)
	return res.Value, res.Found, res.Err
}

// Remove deletes key, blocking until the deletion lands or ctx is cancelled.
// Removing an absent key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	res := s.d.Remove(key).Wait(ctx)
	return res.Err
}

// Close releases the underlying engine's resources.
func (s *Store) Close() error { return s.d.Close() }
