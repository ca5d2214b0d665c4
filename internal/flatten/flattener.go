package flatten

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FS is the set of filesystem primitives a run reads and mutates through.
// Tests swap it to inject failures.
type FS interface {
	ReadDir(name string) ([]os.DirEntry, error)
	Stat(name string) (os.FileInfo, error)
	Lstat(name string) (os.FileInfo, error)
	Rename(oldpath, newpath string) error
	Remove(name string) error
}

// OSFS is the host filesystem.
type OSFS struct{}

func (OSFS) ReadDir(name string) ([]os.DirEntry, error) { return os.ReadDir(name) }
func (OSFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }
func (OSFS) Lstat(name string) (os.FileInfo, error) { return os.Lstat(name) }
func (OSFS) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }
func (OSFS) Remove(name string) error { return os.Remove(name) }

type Options struct {
	// OnEvent receives every event synchronously, in operation order.
	OnEvent func(Event)
	Logger  *zap.Logger
	FS      FS
}

// Flatten moves every file below root's subdirectories into root and
// removes the directories left empty. The returned Result is never nil.
func Flatten(ctx context.Context, root string, onEvent func(Event)) (*Result, error) {
	return Run(ctx, root, Options{OnEvent: onEvent})
}

// Run is Flatten with explicit options.
//
// The walk is post-order: a directory's subdirectories are finished before
// its own files are moved and its emptied subdirectories removed. The first
// error stops the run; nothing already done is undone.
func Run(ctx context.Context, root string, opts Options) (*Result, error) {
	if opts.FS == nil {
		opts.FS = OSFS{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	absRoot, info, err := checkRoot(opts.FS, root)
	if err != nil {
		return &Result{Root: absRoot}, err
	}

	r := &run{
		ctx:      ctx,
		opts:     opts,
		root:     absRoot,
		rootInfo: info,
		result:   &Result{Root: absRoot},
	}

	if err := r.walkRoot(); err != nil {
		return r.result, err
	}
	if err := r.pruneTopLevel(); err != nil {
		return r.result, err
	}
	return r.result, nil
}

// CheckRoot returns the absolute form of root, or an error wrapping
// ErrInvalidRoot when it is not an existing directory.
func CheckRoot(root string) (string, error) {
	absRoot, _, err := checkRoot(OSFS{}, root)
	return absRoot, err
}

func checkRoot(fsys FS, root string) (string, os.FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return root, nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	info, err := fsys.Stat(absRoot)
	if err != nil {
		return absRoot, nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return absRoot, nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, absRoot)
	}
	return absRoot, info, nil
}

type run struct {
	ctx      context.Context
	opts     Options
	root     string
	rootInfo os.FileInfo
	result   *Result
}

type entryKind int

const (
	kindFile entryKind = iota
	kindDir
	kindDirLink
)

type entry struct {
	path string
	name string
	kind entryKind
}

func (r *run) walkRoot() error {
	entries, err := r.list(r.root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.kind != kindDir {
			continue
		}
		if err := r.visit(e.path); err != nil {
			return err
		}
	}
	return nil
}

// visit processes dir and everything below it. dir is never the root.
func (r *run) visit(dir string) error {
	if err := r.checkCancelled(); err != nil {
		return err
	}

	entries, err := r.list(dir)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.kind != kindDir {
			continue
		}
		if err := r.visit(e.path); err != nil {
			return err
		}
	}

	r.opts.Logger.Debug("flattening directory", zap.String("dir", dir), zap.Int("entries", len(entries)))

	for _, e := range entries {
		if e.kind != kindFile {
			continue
		}
		if err := r.moveToRoot(e); err != nil {
			return err
		}
	}

	for _, e := range entries {
		if e.kind == kindFile {
			continue
		}
		if err := r.removeIfEmpty(e); err != nil {
			return err
		}
	}
	return nil
}

// pruneTopLevel removes root's immediate subdirectories that are empty.
func (r *run) pruneTopLevel() error {
	info, err := r.opts.FS.Stat(r.root)
	if err != nil {
		return &IOError{Op: "stat", Path: r.root, Err: err}
	}
	if !os.SameFile(r.rootInfo, info) {
		return &IOError{Op: "stat", Path: r.root, Err: errRootReplaced}
	}

	entries, err := r.list(r.root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.kind == kindFile {
			continue
		}
		if err := r.removeIfEmpty(e); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) moveToRoot(e entry) error {
	if err := r.checkCancelled(); err != nil {
		return err
	}

	dest, err := r.destination(e.name)
	if err != nil {
		return err
	}
	if err := r.opts.FS.Rename(e.path, dest); err != nil {
		return &IOError{Op: "move", Path: e.path, Err: err}
	}
	r.emit(Event{Type: FileMoved, Path: e.path, Dest: dest})
	return nil
}

// destination picks root/name, or the first free root/base_N.ext when that
// name is taken. The check happens per file at move time.
func (r *run) destination(name string) (string, error) {
	dest := filepath.Join(r.root, name)
	taken, err := r.exists(dest)
	if err != nil || !taken {
		return dest, err
	}

	for n := 1; ; n++ {
		candidate := filepath.Join(r.root, CandidateName(name, n))
		taken, err := r.exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			r.opts.Logger.Debug("resolved name collision",
				zap.String("name", name), zap.String("dest", candidate))
			return candidate, nil
		}
	}
}

func (r *run) exists(path string) (bool, error) {
	_, err := r.opts.FS.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, &IOError{Op: "stat", Path: path, Err: err}
}

// removeIfEmpty deletes a directory, or a symlink to one, whose listing is
// empty. Entries that vanished since they were listed are skipped.
func (r *run) removeIfEmpty(e entry) error {
	if err := r.checkCancelled(); err != nil {
		return err
	}

	children, err := r.opts.FS.ReadDir(e.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &IOError{Op: "readdir", Path: e.path, Err: err}
	}
	if len(children) > 0 {
		return nil
	}

	// os.Remove unlinks a symlink itself and never follows it.
	if err := r.opts.FS.Remove(e.path); err != nil {
		return &IOError{Op: "remove", Path: e.path, Err: err}
	}
	r.emit(Event{Type: DirDeleted, Path: e.path})
	return nil
}

// list enumerates dir once, sorted by name, and classifies each entry.
// Symlinks are never descended into.
func (r *run) list(dir string) ([]entry, error) {
	dirEntries, err := r.opts.FS.ReadDir(dir)
	if err != nil {
		return nil, &IOError{Op: "readdir", Path: dir, Err: err}
	}

	entries := make([]entry, 0, len(dirEntries))
	for _, d := range dirEntries {
		e := entry{
			path: filepath.Join(dir, d.Name()),
			name: d.Name(),
			kind: kindFile,
		}
		switch {
		case d.IsDir():
			e.kind = kindDir
		case d.Type()&fs.ModeSymlink != 0:
			if info, err := r.opts.FS.Stat(e.path); err == nil && info.IsDir() {
				e.kind = kindDirLink
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *run) emit(e Event) {
	r.result.record(e)
	if r.opts.OnEvent != nil {
		r.opts.OnEvent(e)
	}
}

func (r *run) checkCancelled() error {
	if err := r.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return nil
}
