// Package progress reports upload progress on a terminal line.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// minInterval limits how often the progress line is redrawn
const minInterval = 100 * time.Millisecond

// Tracker counts transferred bytes for one attempt and redraws a single
// status line.
type Tracker struct {
	mu          sync.Mutex
	out         io.Writer
	label       string
	total       int64
	transferred int64
	lastDraw    time.Time
	now         func() time.Time
	done        bool
}

// NewTracker creates a tracker for an upload of total bytes
func NewTracker(out io.Writer, label string, total int64) *Tracker {
	return &Tracker{out: out, label: label, total: total, now: time.Now}
}

// Update adds n transferred bytes and redraws when due
func (t *Tracker) Update(n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.transferred += n
	now := t.now()
	finished := t.total > 0 && t.transferred >= t.total
	if !finished && now.Sub(t.lastDraw) < minInterval {
		return
	}
	t.lastDraw = now
	t.draw()
	if finished && !t.done {
		t.done = true
		fmt.Fprintln(t.out)
	}
}

// Line renders the current status line
func (t *Tracker) Line() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.line()
}

func (t *Tracker) line() string {
	pct := 100
	if t.total > 0 {
		pct = int(t.transferred * 100 / t.total)
		if pct > 100 {
			pct = 100
		}
	}
	return fmt.Sprintf("[%3d%%] %s / %s - %s",
		pct, humanize.Bytes(uint64(t.transferred)), humanize.Bytes(uint64(t.total)), t.label)
}

func (t *Tracker) draw() {
	fmt.Fprintf(t.out, "\r%s", t.line())
}

// Reader wraps an io.Reader to track progress
type Reader struct {
	reader  io.Reader
	tracker *Tracker
}

// NewReader creates a new progress reader
func NewReader(reader io.Reader, tracker *Tracker) *Reader {
	return &Reader{reader: reader, tracker: tracker}
}

// Read implements io.Reader
func (pr *Reader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)
	if n > 0 {
		pr.tracker.Update(int64(n))
	}
	return n, err
}

// Wrapper returns a body wrapper for the orchestrator. Each call starts a
// fresh tracker labelled with the provider name.
func Wrapper(out io.Writer) func(provider string, total int64) func(io.Reader) io.Reader {
	return func(provider string, total int64) func(io.Reader) io.Reader {
		return func(r io.Reader) io.Reader {
			return NewReader(r, NewTracker(out, provider, total))
		}
	}
}
