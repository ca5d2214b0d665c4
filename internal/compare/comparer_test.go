package compare

import (
	"strings"
	"testing"

	"flatten-go/internal/manifest"
)

func build(t *testing.T, files map[string]manifest.FileData) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Build(files, "/r")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return m
}

func TestCompare_NoChanges(t *testing.T) {
	before := build(t, map[string]manifest.FileData{
		"/r/a/x.txt": {Hash: "h1"},
		"/r/b/x.txt": {Hash: "h1"},
	})
	after := build(t, map[string]manifest.FileData{
		"/r/x.txt":   {Hash: "h1"},
		"/r/x_1.txt": {Hash: "h1"},
	})

	result := Compare(before, after)
	if result.HasChanges() {
		t.Errorf("Expected no changes, got %+v", result)
	}
	if got := FormatReport(result); got != "Contents verified: no changes." {
		t.Errorf("Unexpected report %q", got)
	}
}

func TestCompare_LostDuplicate(t *testing.T) {
	before := build(t, map[string]manifest.FileData{
		"/r/a/x.txt": {Hash: "h1"},
		"/r/b/x.txt": {Hash: "h1"},
	})
	after := build(t, map[string]manifest.FileData{
		"/r/x.txt": {Hash: "h1"},
		"/r/y.txt": {Hash: "h2"},
	})

	result := Compare(before, after)
	if len(result.Missing) != 1 || result.Missing[0].Delta != 1 || result.Missing[0].Hash != "h1" {
		t.Errorf("Expected one missing copy of h1, got %+v", result.Missing)
	}
	if len(result.Unexpected) != 1 || result.Unexpected[0].Hash != "h2" {
		t.Errorf("Expected h2 unexpected, got %+v", result.Unexpected)
	}

	report := FormatReport(result)
	if !strings.Contains(report, "Summary: 1 missing, 1 unexpected") {
		t.Errorf("Unexpected report:\n%s", report)
	}
}
