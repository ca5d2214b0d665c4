package lock

import (
	"errors"
	"os"
	"testing"
)

func TestAcquire_Exclusive(t *testing.T) {
	dir := t.TempDir()

	first, err := Acquire(dir, "/data/photos")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if _, err := Acquire(dir, "/data/photos"); !errors.Is(err, ErrLocked) {
		t.Errorf("Expected ErrLocked for a second lock, got %v", err)
	}

	other, err := Acquire(dir, "/data/music")
	if err != nil {
		t.Fatalf("Different roots should not contend: %v", err)
	}
	if err := other.Release(); err != nil {
		t.Errorf("Release failed: %v", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	again, err := Acquire(dir, "/data/photos/")
	if err != nil {
		t.Fatalf("Acquire after release failed: %v", err)
	}
	_ = again.Release()
}

func TestPath_OutsideRoot(t *testing.T) {
	if Path("/tmp", "/data/photos") == Path("/tmp", "/data/music") {
		t.Error("Different roots should use different lock files")
	}
	if Path("/tmp", "/data/photos") != Path("/tmp", "/data/photos/") {
		t.Error("Equivalent root paths should share a lock file")
	}
}

func TestRelease_KeepsLockFile(t *testing.T) {
	dir := t.TempDir()

	l, err := Acquire(dir, "/data/photos")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	if _, err := os.Stat(Path(dir, "/data/photos")); err != nil {
		t.Errorf("Expected lock file to remain after release: %v", err)
	}

	again, err := Acquire(dir, "/data/photos")
	if err != nil {
		t.Fatalf("Acquire on the existing lock file failed: %v", err)
	}
	if err := again.Release(); err != nil {
		t.Errorf("Release failed: %v", err)
	}
}
