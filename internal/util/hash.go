// Package util contains internal helpers (hashing, sizing, padding).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// Hash128 is a 128-bit non-cryptographic digest of a key.
//
// xxhash only produces 64 bits per call, so HashKey runs it twice over
// distinct inputs and concatenates the results. A collision across two
// independent 64-bit digests is astronomically less likely than in either
// half alone.
type Hash128 struct {
	Hi, Lo uint64
}

// saltByte is appended to the key before the second hash pass so the two
// 64-bit digests are computed over distinct byte sequences.
const saltByte = 0x5a

// HashKey computes the 128-bit digest of key.
func HashKey(key string) Hash128 {
	b := []byte(key)
	salted := make([]byte, len(b)+1)
	copy(salted, b)
	salted[len(b)] = saltByte
	return Hash128{
		Hi: xxhash.Sum64(b),
		Lo: xxhash.Sum64(salted),
	}
}

// HexString renders the digest as 32 lowercase hex characters: the path
// mapper takes the first 3 as the shard id and the remaining 29 as the
// entry's file name.
func (h Hash128) HexString() string {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], h.Hi)
	binary.BigEndian.PutUint64(buf[8:], h.Lo)
	return hex.EncodeToString(buf[:])
}
