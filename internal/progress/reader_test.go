package progress

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"
)

func TestTrackerLine(t *testing.T) {
	tr := NewTracker(io.Discard, "0x0st", 3_000_000)
	tr.now = func() time.Time { return time.Time{} }
	tr.Update(1_260_000)

	if got, want := tr.Line(), "[ 42%] 1.3 MB / 3.0 MB - 0x0st"; got != want {
		t.Errorf("Line() = %q, want %q", got, want)
	}
}

func TestReaderPassesDataThrough(t *testing.T) {
	payload := strings.Repeat("x", 10_000)
	var out bytes.Buffer
	wrap := Wrapper(&out)("paste_rs", int64(len(payload)))

	got, err := io.ReadAll(wrap(strings.NewReader(payload)))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != payload {
		t.Error("progress reader must not alter the body")
	}
	if !strings.Contains(out.String(), "[100%] 10 kB / 10 kB - paste_rs") {
		t.Errorf("Expected final progress line, got %q", out.String())
	}
	if !strings.HasSuffix(out.String(), "\n") {
		t.Error("Expected newline after completion")
	}
}

func TestTrackerThrottlesRedraws(t *testing.T) {
	var out bytes.Buffer
	now := time.Unix(0, 0)
	tr := NewTracker(&out, "bunny", 1000)
	tr.now = func() time.Time { return now }

	tr.Update(10)
	tr.Update(10)
	if n := strings.Count(out.String(), "\r"); n != 1 {
		t.Errorf("Expected 1 redraw within the interval, got %d", n)
	}
	now = now.Add(minInterval)
	tr.Update(10)
	if n := strings.Count(out.String(), "\r"); n != 2 {
		t.Errorf("Expected a redraw after the interval, got %d", n)
	}
}

func TestWrapperStartsFreshTrackerPerAttempt(t *testing.T) {
	var out bytes.Buffer
	wrap := Wrapper(&out)
	for _, p := range []string{"a", "b"} {
		if _, err := io.ReadAll(wrap(p, 4)(strings.NewReader("abcd"))); err != nil {
			t.Fatal(err)
		}
	}
	if strings.Count(out.String(), "[100%]") != 2 {
		t.Errorf("Expected one completed line per attempt, got %q", out.String())
	}
}
