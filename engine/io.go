package engine

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// readResult is the outcome of the Read I/O primitive: exactly
// one of value (hit), or a miss (found=false, err=nil).
type readResult struct {
	value []byte
	found bool
}

// readFile reads and decodes the entry at path. The caller must hold the
// shard's lock in shared mode. A missing file, a too-short file, or an
// expired entry are all reported as a miss — corruption is indistinguishable
// from absence on read.
func readFile(path string, now time.Time) (readResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return readResult{}, nil
		}
		return readResult{}, wrapIO("read", err)
	}
	decoded, ok := decodeEntry(raw)
	if !ok || decoded.isExpired(now) {
		return readResult{}, nil
	}
	return readResult{value: decoded.value, found: true}, nil
}

// writeFile encodes value with ttl and durably replaces the file at path.
// The caller must hold the shard's lock exclusively. The write lands in a
// sibling temp file first and is renamed into place, so a reader taking the
// shard lock immediately after release never observes a partially written
// file: rename is atomic on the same filesystem, and a crash mid-write
// leaves only the orphaned temp file, never a half-written target.
func writeFile(path string, value []byte, ttl time.Duration, now time.Time) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return wrapIO("mkdir", err)
	}

	tmp := filepath.Join(dir, ".tmp-"+uuid.NewString())
	data := encodeEntry(value, ttl, now)
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return wrapIO("write-temp", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return wrapIO("rename", err)
	}
	return nil
}

// removeFile deletes path if present. The caller must hold the shard's lock
// exclusively. A missing target is not an error, matching remove
// idempotence.
func removeFile(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return wrapIO("remove", err)
	}
	return nil
}

// reclaimCounts tallies how many entries scanShard removed, broken out by
// why: a corrupt file (shorter than the header) versus one whose TTL
// passed. The janitor reports each bucket to Metrics.Reclaimed separately.
type reclaimCounts struct {
	ttl     int
	corrupt int
}

func (c reclaimCounts) total() int { return c.ttl + c.corrupt }

// scanShard iterates a shard directory, deleting every file that is either
// corrupt or expired as of now. The caller must hold the shard's lock
// exclusively for the duration of the scan. A missing shard directory
// (never written to) is not an error.
func scanShard(dir string, now time.Time) (reclaimCounts, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return reclaimCounts{}, nil
		}
		return reclaimCounts{}, wrapIO("readdir", err)
	}

	var counts reclaimCounts
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		if len(name) > 0 && name[0] == '.' {
			continue // skip stray temp files from an interrupted write
		}
		path := filepath.Join(dir, name)
		reason, reclaim := classifyReclaim(path, now)
		if !reclaim {
			continue
		}
		if err := removeFile(path); err != nil {
			continue
		}
		if reason == EvictCorrupt {
			counts.corrupt++
		} else {
			counts.ttl++
		}
	}
	return counts, nil
}

// classifyReclaim opens just enough of a file to decide whether the
// janitor should delete it, and why: EvictCorrupt for anything shorter
// than the header, EvictTTL for anything whose deadline has passed.
// reclaim is false for a live entry, which should be left alone.
func classifyReclaim(path string, now time.Time) (reason EvictReason, reclaim bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	var header [headerSize]byte
	n, err := f.Read(header[:])
	if err != nil && n == 0 {
		return 0, false
	}
	if n < headerSize {
		return EvictCorrupt, true
	}
	decoded, _ := decodeEntry(header[:])
	if decoded.isExpired(now) {
		return EvictTTL, true
	}
	return 0, false
}
