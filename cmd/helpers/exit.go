package helpers

import (
	"errors"

	"github.com/zinc-sig/pst/internal/orchestrator"
)

// Process exit codes
const (
	ExitOK           = 0
	ExitInput        = 1
	ExitConfig       = 2
	ExitNoCandidates = 3
	ExitExhausted    = 4
	ExitInterrupted  = 5
)

// ExitError carries the exit code for a failed command. Silent errors have
// already been reported to the user.
type ExitError struct {
	Code   int
	Err    error
	Silent bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit status"
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Exit wraps err with an exit code
func Exit(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}

// CodeForReason maps a failed run to its exit code
func CodeForReason(r orchestrator.Reason) int {
	switch r {
	case orchestrator.ReasonConfig:
		return ExitConfig
	case orchestrator.ReasonNoCandidates:
		return ExitNoCandidates
	case orchestrator.ReasonExhausted:
		return ExitExhausted
	case orchestrator.ReasonDeadline, orchestrator.ReasonCanceled:
		return ExitInterrupted
	}
	return ExitInput
}

// CodeOf returns the exit code for err, ExitInput for unknown errors
func CodeOf(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if r := orchestrator.ReasonOf(err); r != "" {
		return CodeForReason(r)
	}
	return ExitInput
}
