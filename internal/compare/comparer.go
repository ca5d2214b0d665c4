package compare

import (
	"fmt"
	"sort"
	"strings"

	"flatten-go/internal/manifest"
)

type ChangeType string

const (
	Missing    ChangeType = "MISSING"
	Unexpected ChangeType = "UNEXPECTED"
)

// Change is a content hash whose occurrence count differs between the
// before and after manifests. Delta is always positive.
type Change struct {
	Type  ChangeType
	Hash  string
	Delta int
	Paths []string
}

type CompareResult struct {
	Missing    []Change
	Unexpected []Change
}

func (r *CompareResult) HasChanges() bool {
	return len(r.Missing) > 0 || len(r.Unexpected) > 0
}

// Compare reports contents present in before but not after (Missing) and
// the reverse (Unexpected), counting duplicates.
func Compare(before, after *manifest.Manifest) *CompareResult {
	result := &CompareResult{
		Missing:    make([]Change, 0),
		Unexpected: make([]Change, 0),
	}

	for sum, count := range before.Counts {
		if delta := count - after.Counts[sum]; delta > 0 {
			result.Missing = append(result.Missing, Change{
				Type:  Missing,
				Hash:  sum,
				Delta: delta,
				Paths: pathsOf(before, sum),
			})
		}
	}
	for sum, count := range after.Counts {
		if delta := count - before.Counts[sum]; delta > 0 {
			result.Unexpected = append(result.Unexpected, Change{
				Type:  Unexpected,
				Hash:  sum,
				Delta: delta,
				Paths: pathsOf(after, sum),
			})
		}
	}

	// Sort for deterministic output
	sort.Slice(result.Missing, func(i, j int) bool {
		return result.Missing[i].Hash < result.Missing[j].Hash
	})
	sort.Slice(result.Unexpected, func(i, j int) bool {
		return result.Unexpected[i].Hash < result.Unexpected[j].Hash
	})

	return result
}

func pathsOf(m *manifest.Manifest, sum string) []string {
	var paths []string
	for path, data := range m.Files {
		if data.Hash == sum {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

func FormatReport(result *CompareResult) string {
	if !result.HasChanges() {
		return "Contents verified: no changes."
	}

	var b strings.Builder
	b.WriteString("Content changes detected:\n\n")

	if len(result.Missing) > 0 {
		fmt.Fprintf(&b, "MISSING (%d contents):\n", len(result.Missing))
		for _, change := range result.Missing {
			fmt.Fprintf(&b, "  - %s x%d (was: %s)\n", change.Hash, change.Delta, strings.Join(change.Paths, ", "))
		}
		b.WriteString("\n")
	}

	if len(result.Unexpected) > 0 {
		fmt.Fprintf(&b, "UNEXPECTED (%d contents):\n", len(result.Unexpected))
		for _, change := range result.Unexpected {
			fmt.Fprintf(&b, "  + %s x%d (at: %s)\n", change.Hash, change.Delta, strings.Join(change.Paths, ", "))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Summary: %d missing, %d unexpected\n", len(result.Missing), len(result.Unexpected))
	return b.String()
}
