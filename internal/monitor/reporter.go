package monitor

import (
	"fmt"
	"io"
	"sync"

	"ge-price-monitor/internal/quote"
)

// Level classifies a status line.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Reporter receives what the user should see: quote blocks and status lines.
type Reporter interface {
	Quote(itemName string, q quote.Quote)
	Status(level Level, msg string)
}

// WriterReporter prints quotes to out and status lines to status.
type WriterReporter struct {
	mu     sync.Mutex
	out    io.Writer
	status io.Writer
}

// NewWriterReporter constructs a reporter over plain writers.
func NewWriterReporter(out, status io.Writer) *WriterReporter {
	return &WriterReporter{out: out, status: status}
}

// Quote prints the rendered price block, the margin line when both sides
// are known, and a blank separator line.
func (r *WriterReporter) Quote(itemName string, q quote.Quote) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, quote.Render(itemName, q))
	if line, ok := quote.RenderMargin(q); ok {
		fmt.Fprintln(r.out, line)
	}
	fmt.Fprintln(r.out)
}

// Status prints a single status line.
func (r *WriterReporter) Status(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if level == LevelInfo {
		fmt.Fprintln(r.status, msg)
		return
	}
	fmt.Fprintf(r.status, "[%s] %s\n", level, msg)
}

var _ Reporter = (*WriterReporter)(nil)
