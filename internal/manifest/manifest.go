package manifest

import (
	"context"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/txaty/go-merkletree"

	"flatten-go/internal/hash"
	"flatten-go/internal/progress"
	"flatten-go/internal/walker"
)

type FileData struct {
	Hash string
	Size int64
}

// Manifest describes the content of a tree independent of file names: two
// trees holding the same multiset of contents share a RootHash.
type Manifest struct {
	Root      string
	RootHash  string
	TotalSize int64
	Files     map[string]FileData // path -> data
	Counts    map[string]int      // content hash -> occurrences
}

// leaf is one serialized merkle leaf.
type leaf []byte

func (l leaf) Serialize() ([]byte, error) {
	return l, nil
}

// Build computes the manifest of files. The root depends only on the
// content hashes and their counts, never on paths.
func Build(files map[string]FileData, rootPath string) (*Manifest, error) {
	m := &Manifest{
		Root:   filepath.Clean(rootPath),
		Files:  files,
		Counts: make(map[string]int),
	}

	for _, data := range files {
		m.Counts[data.Hash]++
		m.TotalSize += data.Size
	}

	rootHash, err := merkleRoot(m.Counts, len(files))
	if err != nil {
		return nil, fmt.Errorf("failed to build merkle tree: %w", err)
	}
	m.RootHash = hex.EncodeToString(rootHash)
	return m, nil
}

// merkleRoot hashes one leaf per distinct content ("hash:count"), sorted,
// after a leaf holding the total count. Leaves are therefore unique, so the
// last-leaf duplication go-merkletree applies to odd levels cannot make two
// multisets collide.
func merkleRoot(counts map[string]int, total int) ([]byte, error) {
	if total == 0 {
		return hash.Node([]byte("empty-tree"))
	}

	pairs := make([]string, 0, len(counts))
	for sum, count := range counts {
		pairs = append(pairs, sum+":"+strconv.Itoa(count))
	}
	sort.Strings(pairs)

	blocks := make([]merkletree.DataBlock, 0, len(pairs)+1)
	blocks = append(blocks, leaf("n:"+strconv.Itoa(total)))
	for _, pair := range pairs {
		blocks = append(blocks, leaf(pair))
	}

	tree, err := merkletree.New(&merkletree.Config{
		HashFunc: hash.Node,
		Mode:     merkletree.ModeTreeBuild,
	}, blocks)
	if err != nil {
		return nil, err
	}
	return tree.Root, nil
}

// Scan walks rootPath, hashes every file on workers goroutines and builds
// its manifest. bar, if set, is sized to the number of files found.
func Scan(ctx context.Context, rootPath string, workers int, bar *progress.Bar) (*Manifest, error) {
	walkResult, err := walker.Walk(rootPath)
	if err != nil {
		return nil, err
	}

	if bar != nil {
		bar.SetTotal(int64(len(walkResult.Files)))
	}
	hashResult, err := walker.HashFiles(ctx, walkResult.Files, workers, bar)
	if err != nil {
		return nil, fmt.Errorf("failed to hash files: %w", err)
	}

	files := make(map[string]FileData, len(walkResult.Files))
	for _, fileInfo := range walkResult.Files {
		files[fileInfo.Path] = FileData{
			Hash: hashResult.Hashes[fileInfo.Path],
			Size: fileInfo.Size,
		}
	}
	return Build(files, rootPath)
}
