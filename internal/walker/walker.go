package walker

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"flatten-go/internal/hash"
	"flatten-go/internal/progress"
)

type FileInfo struct {
	Path string
	Size int64
	Mode fs.FileMode
	// LinkTarget is set for symlinks, which are hashed by target rather
	// than followed.
	LinkTarget string
}

type WalkResult struct {
	Files []FileInfo
}

// Walk lists every non-directory entry at or below rootPath, root's own
// files included. It does not follow symlinks.
func Walk(rootPath string) (*WalkResult, error) {
	result := &WalkResult{
		Files: make([]FileInfo, 0),
	}

	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		fi := FileInfo{
			Path: path,
			Size: info.Size(),
			Mode: info.Mode(),
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			fi.LinkTarget = target
		}
		result.Files = append(result.Files, fi)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return result, nil
}

type HashResult struct {
	Hashes map[string]string // path -> hash
}

// HashFiles hashes files on at most numWorkers goroutines. The first
// failure cancels the remaining work and is returned.
func HashFiles(ctx context.Context, files []FileInfo, numWorkers int, progressBar *progress.Bar) (*HashResult, error) {
	if numWorkers <= 0 {
		numWorkers = 1
	}

	hashes := make([]string, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)

	for i, fileInfo := range files {
		i, fileInfo := i, fileInfo
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sum, err := hashOne(fileInfo)
			if err != nil {
				return fmt.Errorf("%s: %w", fileInfo.Path, err)
			}
			hashes[i] = sum
			if progressBar != nil {
				progressBar.SetDirectory(filepath.Dir(fileInfo.Path))
				progressBar.Increment()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &HashResult{Hashes: make(map[string]string, len(files))}
	for i, fileInfo := range files {
		result.Hashes[fileInfo.Path] = hashes[i]
	}
	return result, nil
}

func hashOne(fileInfo FileInfo) (string, error) {
	switch {
	case fileInfo.Mode&fs.ModeSymlink != 0:
		return "link:" + hash.Key(fileInfo.LinkTarget), nil
	case !fileInfo.Mode.IsRegular():
		// Opening a fifo would block.
		return "special:" + fileInfo.Mode.Type().String(), nil
	}
	return hash.File(fileInfo.Path)
}
