package output

import (
	"github.com/zinc-sig/pst/internal/orchestrator"
	"github.com/zinc-sig/pst/internal/upload"
)

// Result is the machine-readable outcome of one upload
type Result struct {
	Success  bool      `json:"success"`
	URL      *string   `json:"url"`
	Provider *string   `json:"provider"`
	Error    *string   `json:"error"`
	Reason   string    `json:"reason,omitempty"`
	Attempts []Attempt `json:"attempts"`
}

// Attempt is one provider attempt in chronological order
type Attempt struct {
	Provider   string `json:"provider"`
	Retry      int    `json:"retry"`
	DurationMs int64  `json:"duration_ms"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	Kind       string `json:"kind,omitempty"`
}

// NewResult converts an orchestrator result into its JSON form
func NewResult(res *orchestrator.Result) *Result {
	out := &Result{
		Success:  res.Succeeded(),
		Attempts: make([]Attempt, 0, len(res.Attempts)),
	}
	if res.Succeeded() {
		out.URL = &res.URL
		out.Provider = &res.Provider
	}
	if res.Err != nil {
		msg := res.Err.Error()
		out.Error = &msg
		out.Reason = string(res.Err.Reason)
	}
	for _, a := range res.Attempts {
		out.Attempts = append(out.Attempts, newAttempt(a))
	}
	return out
}

func newAttempt(a upload.AttemptRecord) Attempt {
	at := Attempt{
		Provider:   a.Provider,
		Retry:      a.Retry,
		DurationMs: a.Duration.Milliseconds(),
		Success:    a.Success,
	}
	if a.Err != nil {
		at.Error = a.Err.Error()
		at.Kind = string(a.ErrorKind())
	}
	return at
}
