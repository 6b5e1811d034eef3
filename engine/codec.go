package engine

import (
	"encoding/binary"
	"math"
	"time"
)

// headerSize is the fixed 10-byte prefix of every entry file: 2 reserved
// bytes followed by an 8-byte big-endian expiration in Unix seconds.
const headerSize = 10

// encodeEntry prepends the header to value and returns the full file
// contents. ttl <= 0 means "never expires" (expiration stored as 0).
// A positive ttl is converted to an absolute deadline, saturating at
// math.MaxUint64 instead of overflowing.
func encodeEntry(value []byte, ttl time.Duration, now time.Time) []byte {
	buf := make([]byte, headerSize+len(value))
	// buf[0:2] left as {0x00, 0x00}: version/reserved, ignored on read.
	binary.BigEndian.PutUint64(buf[2:headerSize], expirationSeconds(ttl, now))
	copy(buf[headerSize:], value)
	return buf
}

// expirationSeconds computes the absolute expiration instant (seconds since
// the Unix epoch) for a relative ttl, saturating rather than overflowing.
func expirationSeconds(ttl time.Duration, now time.Time) uint64 {
	if ttl <= 0 {
		return 0
	}
	nowSec := now.Unix()
	if nowSec < 0 {
		nowSec = 0
	}
	ttlSec := int64(ttl / time.Second)
	if ttlSec <= 0 {
		// Sub-second positive TTLs still round up to 1s: the on-disk
		// resolution is seconds, and a TTL of 0s after truncation would be
		// indistinguishable from "never expires".
		ttlSec = 1
	}
	sum := uint64(nowSec) + uint64(ttlSec)
	if sum < uint64(nowSec) { // overflow
		return math.MaxUint64
	}
	return sum
}

// decodedEntry is the result of a successful header decode.
type decodedEntry struct {
	expiresAt uint64 // 0 == never
	value     []byte
}

// decodeEntry parses a file's raw contents. It returns ok=false and a
// corrupt indication when the file is shorter than the header; the caller
// is responsible for checking expiration against the current time.
func decodeEntry(raw []byte) (decodedEntry, bool) {
	if len(raw) < headerSize {
		return decodedEntry{}, false
	}
	exp := binary.BigEndian.Uint64(raw[2:headerSize])
	return decodedEntry{
		expiresAt: exp,
		value:     raw[headerSize:],
	}, true
}

// isExpired reports whether a decoded entry's deadline has passed as of now.
// A zero deadline never expires.
func (d decodedEntry) isExpired(now time.Time) bool {
	if d.expiresAt == 0 {
		return false
	}
	return d.expiresAt < uint64(now.Unix())
}
