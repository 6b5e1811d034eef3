package util

import "runtime"

// ReasonableWorkerCount picks a practical default worker pool size based on
// CPU parallelism. Heuristic: nextPow2(2*GOMAXPROCS), clamped to [1..256].
// Unlike the engine's 4096 shards, which are fixed, the worker count is an
// implementation-defined tuning knob sized with the same pow2-clamped
// heuristic.
func ReasonableWorkerCount() int {
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	n := int(NextPow2(uint64(p * 2)))
	if n < 1 {
		n = 1
	}
	if n > 256 {
		n = 256
	}
	return n
}
