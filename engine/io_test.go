package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteReadFile_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "entry")
	now := time.Unix(1_000, 0)

	if err := writeFile(path, []byte("payload"), 5*time.Second, now); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	res, err := readFile(path, now)
	if err != nil {
		t.Fatalf("readFile: %v", err)
	}
	if !res.found || string(res.value) != "payload" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestReadFile_MissingIsMissNotError(t *testing.T) {
	t.Parallel()

	res, err := readFile(filepath.Join(t.TempDir(), "nope"), time.Unix(0, 0))
	if err != nil {
		t.Fatalf("expected nil error on a missing file, got %v", err)
	}
	if res.found {
		t.Fatal("missing file must report not found")
	}
}

func TestReadFile_ExpiredIsMiss(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "entry")
	now := time.Unix(1_000, 0)

	if err := writeFile(path, []byte("v"), time.Second, now); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	res, err := readFile(path, now.Add(2*time.Second))
	if err != nil {
		t.Fatalf("readFile: %v", err)
	}
	if res.found {
		t.Fatal("expired entry must report not found")
	}
}

func TestWriteFile_NoTempFileLeftBehind(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "entry")
	if err := writeFile(path, []byte("v"), 0, time.Unix(0, 0)); err != nil {
		t.Fatalf("writeFile: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "entry" {
		t.Fatalf("expected exactly one file named entry, got %v", entries)
	}
}

func TestRemoveFile_MissingIsIdempotent(t *testing.T) {
	t.Parallel()

	if err := removeFile(filepath.Join(t.TempDir(), "nope")); err != nil {
		t.Fatalf("removing an absent file must not error: %v", err)
	}
}

func TestScanShard_ReclaimsExpiredAndCorrupt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	now := time.Unix(10_000, 0)

	live := filepath.Join(dir, "live")
	if err := writeFile(live, []byte("v"), 100*time.Second, now); err != nil {
		t.Fatalf("writeFile live: %v", err)
	}
	expired := filepath.Join(dir, "expired")
	if err := writeFile(expired, []byte("v"), time.Second, now); err != nil {
		t.Fatalf("writeFile expired: %v", err)
	}
	corrupt := filepath.Join(dir, "corrupt")
	if err := os.WriteFile(corrupt, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("WriteFile corrupt: %v", err)
	}

	counts, err := scanShard(dir, now.Add(2*time.Second))
	if err != nil {
		t.Fatalf("scanShard: %v", err)
	}
	if counts.total() != 2 {
		t.Fatalf("expected 2 reclaimed entries, got %d", counts.total())
	}
	if counts.ttl != 1 {
		t.Fatalf("expected 1 TTL-expired entry, got %d", counts.ttl)
	}
	if counts.corrupt != 1 {
		t.Fatalf("expected 1 corrupt entry, got %d", counts.corrupt)
	}
	if _, err := os.Stat(live); err != nil {
		t.Fatalf("live entry must survive the sweep: %v", err)
	}
	if _, err := os.Stat(expired); !os.IsNotExist(err) {
		t.Fatal("expired entry must be removed")
	}
	if _, err := os.Stat(corrupt); !os.IsNotExist(err) {
		t.Fatal("corrupt entry must be removed")
	}
}

func TestScanShard_MissingDirIsNotError(t *testing.T) {
	t.Parallel()

	counts, err := scanShard(filepath.Join(t.TempDir(), "absent"), time.Unix(0, 0))
	if err != nil || counts.total() != 0 {
		t.Fatalf("expected (0, nil) for a missing shard dir, got (%d, %v)", counts.total(), err)
	}
}

func TestScanShard_SkipsDotfiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stray := filepath.Join(dir, ".tmp-leftover")
	if err := os.WriteFile(stray, []byte{9}, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	counts, err := scanShard(dir, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("scanShard: %v", err)
	}
	if counts.total() != 0 {
		t.Fatalf("dotfiles must be skipped, reclaimed %d", counts.total())
	}
	if _, err := os.Stat(stray); err != nil {
		t.Fatal("stray temp file must not be removed by scanShard")
	}
}
