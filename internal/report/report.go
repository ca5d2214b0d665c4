package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"flatten-go/internal/flatten"
	"flatten-go/internal/manifest"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Report is the JSON record of one run.
type Report struct {
	Generator    string         `json:"generator"`
	RunID        string         `json:"run_id"`
	Started      time.Time      `json:"started"`
	Finished     time.Time      `json:"finished"`
	Root         string         `json:"root"`
	Status       string         `json:"status"`
	Error        string         `json:"error,omitempty"`
	Moves        []flatten.Move `json:"moves"`
	Deleted      []string       `json:"deleted"`
	Verification *Verification  `json:"verification,omitempty"`
}

type Verification struct {
	Before   string `json:"before_root"`
	After    string `json:"after_root"`
	Files    int    `json:"files"`
	Size     string `json:"size"`
	Verified bool   `json:"verified"`
}

func New(root string) *Report {
	return &Report{
		Generator: "flatten-go",
		RunID:     uuid.NewString(),
		Started:   time.Now(),
		Root:      root,
		Moves:     make([]flatten.Move, 0),
		Deleted:   make([]string, 0),
	}
}

// Finish records the outcome. result may describe a partial run.
func (r *Report) Finish(result *flatten.Result, err error) {
	r.Finished = time.Now()
	if result != nil {
		r.Moves = append(r.Moves, result.Moves...)
		r.Deleted = append(r.Deleted, result.Deleted...)
	}
	if err != nil {
		r.Status = StatusFailure
		r.Error = err.Error()
		return
	}
	r.Status = StatusSuccess
}

// Fail marks the run failed by a step after the flatten itself.
func (r *Report) Fail(err error) {
	r.Status = StatusFailure
	r.Error = err.Error()
}

// Verify attaches the before/after manifests.
func (r *Report) Verify(before, after *manifest.Manifest, verified bool) {
	r.Verification = &Verification{
		Before:   before.RootHash,
		After:    after.RootHash,
		Files:    len(after.Files),
		Size:     humanize.IBytes(uint64(after.TotalSize)),
		Verified: verified,
	}
	if !verified && r.Status == StatusSuccess {
		r.Status = StatusFailure
		r.Error = "content verification failed"
	}
}

func (r *Report) Summary() string {
	s := fmt.Sprintf("%s: moved %d files, deleted %d empty folders in %s",
		r.Status, len(r.Moves), len(r.Deleted), r.Finished.Sub(r.Started).Round(time.Millisecond))
	if r.Error != "" {
		s += " (" + r.Error + ")"
	}
	return s
}

func Save(r *Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &r, nil
}
