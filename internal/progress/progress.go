package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinner = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Bar renders a single status line. With a total of zero it is
// indeterminate and shows a spinner with the step count instead of a
// percentage.
type Bar struct {
	total      int64
	current    int64
	width      int
	writer     io.Writer
	mu         sync.Mutex
	dirs       map[string]bool
	label      string
	enabled    bool
	lastUpdate time.Time
}

// New returns a bar on w, enabled only when w is a terminal.
func New(total int64, w io.Writer) *Bar {
	f, ok := w.(*os.File)
	return NewWriter(total, w, ok && isTerminal(f))
}

func NewWriter(total int64, w io.Writer, enabled bool) *Bar {
	return &Bar{
		total:   total,
		width:   50,
		writer:  w,
		dirs:    make(map[string]bool),
		enabled: enabled,
	}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (b *Bar) SetDirectory(dir string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dirs[dir] = true
}

func (b *Bar) Increment() {
	b.Step("")
}

// Step counts one unit of work and shows label next to the bar.
func (b *Bar) Step(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current++
	if label != "" {
		b.label = label
	}

	// At most every 100ms to reduce flickering
	now := time.Now()
	if now.Sub(b.lastUpdate) > 100*time.Millisecond || b.current == b.total {
		b.lastUpdate = now
		b.render()
	}
}

// Println prints a log line above the status line.
func (b *Bar) Println(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.enabled {
		fmt.Fprint(b.writer, "\r\033[K")
	}
	fmt.Fprintln(b.writer, line)
	b.render()
}

// SetTotal switches the bar to a percentage once the amount of work is
// known. Zero keeps it indeterminate.
func (b *Bar) SetTotal(total int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.total = total
}

// render must be called with mu held
func (b *Bar) render() {
	if !b.enabled {
		return
	}
	if b.total == 0 {
		frame := spinner[int(b.current)%len(spinner)]
		fmt.Fprintf(b.writer, "\r\033[K%s %d%s", frame, b.current, b.suffix())
		return
	}

	percent := float64(b.current) / float64(b.total) * 100
	filledWidth := int(float64(b.width) * float64(b.current) / float64(b.total))
	if filledWidth > b.width {
		filledWidth = b.width
	}

	bar := strings.Repeat("█", filledWidth) + strings.Repeat("░", b.width-filledWidth)
	fmt.Fprintf(b.writer, "\r\033[K[%s] %3d%% (%d/%d)%s",
		bar, int(percent), b.current, b.total, b.suffix())
}

func (b *Bar) suffix() string {
	if b.label != "" {
		return " | " + b.label
	}
	if len(b.dirs) == 0 {
		return ""
	}

	dirs := make([]string, 0, len(b.dirs))
	for dir := range b.dirs {
		dirs = append(dirs, filepath.Base(dir))
	}
	if len(dirs) > 3 {
		return fmt.Sprintf(" | %s, %s, %s +%d more", dirs[0], dirs[1], dirs[2], len(dirs)-3)
	}
	return " | " + strings.Join(dirs, ", ")
}

func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.enabled {
		return
	}
	if b.total > 0 {
		b.current = b.total
	}
	b.render()
	fmt.Fprintf(b.writer, "\n")
}
