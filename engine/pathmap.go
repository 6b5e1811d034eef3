package engine

import (
	"path/filepath"

	"github.com/kvshard/filecache/internal/util"
)

// ShardCount is the fixed number of shard directories and lock-table slots.
// It is not configurable: the non-blocking janitor and the lock table's
// simplicity both depend on this being a small, fixed, known-at-construction
// size rather than something allocated lazily per accessed shard.
const ShardCount = 4096

// entryPath is the result of mapping a key through the path mapper: a shard
// id in [0, ShardCount) and the absolute file path of the entry.
type entryPath struct {
	shard int
	path  string
}

// mapKey computes the shard id and on-disk path for key, rooted at root.
//
// The digest is rendered as 32 lowercase hex characters; the first 3 select
// the shard directory ("000".."fff"), the remaining 29 select the file name
// within it. The path is a pure function of the key, so no on-disk key
// metadata needs to be stored.
func mapKey(root, key string) entryPath {
	hex := util.HashKey(key).HexString()
	shardDir := hex[:3]
	fileName := hex[3:]
	shard := hexToShardID(shardDir)
	return entryPath{
		shard: shard,
		path:  filepath.Join(root, shardDir, fileName),
	}
}

// hexToShardID parses a 3-character lowercase hex string into [0, 4096).
func hexToShardID(s string) int {
	v := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c >= 'a' && c <= 'f':
			d = int(c-'a') + 10
		}
		v = v<<4 | d
	}
	return v
}

// shardDirName renders a shard id back into its 3-character hex directory
// name; used by the janitor when scanning shards in round-robin order.
func shardDirName(shard int) string {
	const hexDigits = "0123456789abcdef"
	return string([]byte{
		hexDigits[(shard>>8)&0xf],
		hexDigits[(shard>>4)&0xf],
		hexDigits[shard&0xf],
	})
}
