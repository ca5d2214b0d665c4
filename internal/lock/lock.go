package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"flatten-go/internal/hash"
)

// ErrLocked is returned when another run holds the lock for the same root.
var ErrLocked = errors.New("another run is already flattening this directory")

// RootLock serialises runs over one root. The lock file lives outside the
// root so that locking never adds an entry to the tree being flattened.
type RootLock struct {
	lock *flock.Flock
}

// Path returns the lock file used for root inside dir.
func Path(dir, root string) string {
	return filepath.Join(dir, "flatten-go-"+hash.Key(filepath.Clean(root))+".lock")
}

// Acquire takes the lock for root without blocking. An empty dir means the
// OS temp directory.
func Acquire(dir, root string) (*RootLock, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	l := flock.New(Path(dir, root))
	locked, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", root, err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return &RootLock{lock: l}, nil
}

// Release unlocks root. The lock file is left in place so that every run
// locks the same inode.
func (l *RootLock) Release() error {
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("unlock %s: %w", l.lock.Path(), err)
	}
	return nil
}
