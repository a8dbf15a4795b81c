package upload

import "time"

// AttemptRecord is the outcome of one upload attempt against one provider
type AttemptRecord struct {
	Provider string
	Retry    int // zero for the first attempt against a provider
	Duration time.Duration
	Success  bool
	Err      error
}

// ErrorKind returns the kind of the recorded error, empty on success
func (r AttemptRecord) ErrorKind() ErrorKind {
	return KindOf(r.Err)
}
