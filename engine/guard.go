package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// lockFileName is the pidfile sentinel created inside the cache root.
const lockFileName = ".lock"

// processGuard holds the single-holder exclusion over a cache root: at most
// one Engine per root path across processes. Go has no portable
// advisory-lock primitive in the standard library, so the guard is
// implemented as an atomic create-if-absent pidfile, released on every exit
// path.
type processGuard struct {
	path string
}

// acquireGuard attempts to create the pidfile exclusively. If one already
// exists, acquisition fails with ErrAlreadyHeld. A pre-existing pidfile is
// always treated as another live holder rather than distinguished from a
// stale one, since verifying the recorded PID is still running is
// inherently racy across processes and out of scope for an embedded,
// single-machine guard.
func acquireGuard(root string) (*processGuard, error) {
	path := filepath.Join(root, lockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrAlreadyHeld
		}
		return nil, wrapIO("guard-create", err)
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%d\n%s\n", os.Getpid(), uuid.NewString())
	if err != nil {
		_ = os.Remove(path)
		return nil, wrapIO("guard-write", err)
	}
	return &processGuard{path: path}, nil
}

// release removes the pidfile. Safe to call once on every shutdown path.
func (g *processGuard) release() error {
	if g == nil {
		return nil
	}
	if err := os.Remove(g.path); err != nil && !os.IsNotExist(err) {
		return wrapIO("guard-release", err)
	}
	return nil
}
