package flatten

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRoot is returned before any mutation when the root is
	// missing or is not a directory.
	ErrInvalidRoot = errors.New("invalid root")

	// ErrCancelled is returned when the context is done between two
	// filesystem operations.
	ErrCancelled = errors.New("cancelled")

	errRootReplaced = errors.New("root directory was replaced during the run")
)

// IOError describes the filesystem operation that stopped a run.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
