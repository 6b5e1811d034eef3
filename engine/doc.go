// Package engine implements the storage and concurrency core of filecache:
// an embedded, process-local, file-backed key/value cache with per-entry
// TTL and a background cleanup loop.
//
// Design
//
//   - Sharding: every key is hashed to a 128-bit digest; the first 3 hex
//     characters select one of 4096 shard directories, the remaining 29
//     select the entry's file name within that directory. A fixed array of
//     4096 reader/writer locks (lockTable) guards concurrent access — there
//     is no lazy allocation, the table is sized once at construction.
//
//   - Storage: each entry is a single file whose first 10 bytes are a
//     header (2 reserved bytes + an 8-byte big-endian expiration in Unix
//     seconds, 0 meaning "never"), followed by the opaque value payload.
//     Writes land in a sibling temp file and are renamed into place so
//     concurrent readers never observe a torn write.
//
//   - Dispatch: callers never perform I/O on their own goroutine. Engine.Set/
//     Get/Remove enqueue a job and hand back a replySink; a fixed pool of
//     worker goroutines drains the job queue, performs the I/O under the
//     appropriate shard lock, and resolves the sink exactly once. If a
//     worker dies, every sink it owns resolves with ErrWorkerGone instead of
//     hanging forever.
//
//   - Cleanup: a janitor goroutine walks all 4096 shards on a timer,
//     attempting a non-blocking write-lock on each; shards that are busy are
//     skipped and revisited on the next tick, so cleanup never adds latency
//     to a hot shard.
//
//   - Three callers can share one Engine: github.com/kvshard/filecache/adapter/callback,
//     .../adapter/blocking, and .../adapter/asyncctx all translate between
//     the replySink primitive and their respective calling convention. The
//     engine itself has no notion of which adapter is in use.
//
// Basic usage
//
//	eng, err := engine.Build(engine.Config{RootPath: "/var/lib/app/cache"})
//	if err != nil { ... }
//	defer eng.Close()
//
//	sink := eng.Set("alpha", []byte{0x01, 0x02}, 2*time.Second)
//	if res := sink.Wait(context.Background()); res.Err != nil { ... }
package engine
