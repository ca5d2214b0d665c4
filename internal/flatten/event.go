package flatten

import (
	"fmt"
	"path/filepath"
)

type EventType string

const (
	FileMoved  EventType = "MOVED"
	DirDeleted EventType = "DELETED"
)

// Event records one completed mutation. For FileMoved, Path is the source
// and Dest the new location directly under the root. For DirDeleted, Path
// is the removed directory and Dest is empty.
type Event struct {
	Type EventType
	Path string
	Dest string
}

func (e Event) String() string {
	switch e.Type {
	case FileMoved:
		return fmt.Sprintf("Moved: %s → %s", filepath.Base(e.Path), e.Dest)
	case DirDeleted:
		return fmt.Sprintf("Deleted empty folder: %s", e.Path)
	default:
		return fmt.Sprintf("%s %s", e.Type, e.Path)
	}
}

// Move is the (source, destination) pair produced for every moved file.
type Move struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
}

// Result holds every mutation applied by a run. It is returned on failure
// too, describing the moves and deletions that were not rolled back.
type Result struct {
	Root    string
	Moves   []Move
	Deleted []string
}

func (r *Result) record(e Event) {
	switch e.Type {
	case FileMoved:
		r.Moves = append(r.Moves, Move{Source: e.Path, Dest: e.Dest})
	case DirDeleted:
		r.Deleted = append(r.Deleted, e.Path)
	}
}
