package engine

import "time"

// Dispatcher is the minimal surface the three adapters depend on. Coding
// adapters against this interface rather than *Engine mirrors the
// teacher's cache.Cache[K,V] interface: it keeps the adapters ignorant of
// engine internals and makes them trivially testable against a fake.
type Dispatcher interface {
	Set(key string, value []byte, ttl time.Duration) *replySink
	Get(key string) *replySink
	Remove(key string) *replySink
	Close() error
}

var _ Dispatcher = (*Engine)(nil)
