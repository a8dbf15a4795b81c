package orchestrator

import (
	"errors"
	"fmt"
	"strings"
)

// Reason classifies a failed run
type Reason string

const (
	ReasonConfig         Reason = "ConfigError"
	ReasonClassification Reason = "ClassificationError"
	ReasonNoCandidates   Reason = "NoCandidates"
	ReasonDeadline       Reason = "DeadlineExceeded"
	ReasonCanceled       Reason = "Canceled"
	ReasonExhausted      Reason = "Exhausted"
)

// RunError is the terminal failure of one run
type RunError struct {
	Reason  Reason
	Message string
	Err     error
}

func (e *RunError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Reason)
	}
	if e.Err != nil && e.Reason != ReasonExhausted {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// ReasonOf returns the failure reason of err, empty when err is not a
// *RunError
func ReasonOf(err error) Reason {
	var re *RunError
	if errors.As(err, &re) {
		return re.Reason
	}
	return ""
}

type providerFailure struct {
	provider string
	err      error
}

// exhausted aggregates the last error of each provider in candidate order
func exhausted(failures []providerFailure) *RunError {
	parts := make([]string, 0, len(failures))
	errs := make([]error, 0, len(failures))
	for _, f := range failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.provider, f.err))
		errs = append(errs, f.err)
	}
	return &RunError{
		Reason:  ReasonExhausted,
		Message: "all providers failed: " + strings.Join(parts, "; "),
		Err:     errors.Join(errs...),
	}
}
