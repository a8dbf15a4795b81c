package upload

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
)

// ErrorKind classifies a failed upload attempt
type ErrorKind string

const (
	ErrTimeout        ErrorKind = "Timeout"
	ErrRateLimited    ErrorKind = "RateLimited"
	ErrTransport      ErrorKind = "Transport"
	ErrAuthFailure    ErrorKind = "AuthFailure"
	ErrSizeExceeded   ErrorKind = "SizeExceeded"
	ErrRemoteRejected ErrorKind = "RemoteRejected"
	ErrInvalidConfig  ErrorKind = "InvalidConfig"
)

// Transient reports whether retrying the same provider may succeed
func (k ErrorKind) Transient() bool {
	switch k {
	case ErrTimeout, ErrRateLimited, ErrTransport:
		return true
	}
	return false
}

// ProviderError is the error returned by every adapter
type ProviderError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int           // HTTP status when the remote answered
	RetryAfter time.Duration // server hint for RateLimited, zero when absent
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Transient reports whether the error is worth retrying
func (e *ProviderError) Transient() bool {
	return e.Kind.Transient()
}

// NewError creates a provider error
func NewError(provider string, kind ErrorKind, message string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Message: message, Err: err}
}

// Classify converts an arbitrary adapter error into a *ProviderError.
// Errors that are already classified pass through unchanged. Context
// deadlines and network timeouts become Timeout, other network failures
// become Transport, and anything else is treated as a terminal rejection.
func Classify(provider string, err error) *ProviderError {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(provider, ErrTimeout, "attempt timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return NewError(provider, ErrTransport, "attempt canceled", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return NewError(provider, ErrTimeout, "network timeout", err)
		}
		return NewError(provider, ErrTransport, "network failure", err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return NewError(provider, ErrTransport, "network failure", err)
	}
	return NewError(provider, ErrRemoteRejected, "upload failed", err)
}

// KindOf returns the error kind of err, or an empty kind when err is not a
// provider error
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsTransient reports whether err is a transient provider error
func IsTransient(err error) bool {
	return KindOf(err).Transient()
}

// StatusError maps a non-2xx HTTP response to a provider error
func StatusError(provider string, status int, header http.Header, body string) *ProviderError {
	kind := statusKind(status)
	e := NewError(provider, kind, fmt.Sprintf("HTTP %d%s", status, snippet(body)), nil)
	e.StatusCode = status
	if kind == ErrRateLimited && header != nil {
		e.RetryAfter = parseRetryAfter(header.Get("Retry-After"))
	}
	return e
}

func statusKind(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthFailure
	case http.StatusRequestEntityTooLarge:
		return ErrSizeExceeded
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return ErrTimeout
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return ErrTransport
	}
	return ErrRemoteRejected
}

// parseRetryAfter accepts delta seconds only
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

const maxSnippet = 200

func snippet(body string) string {
	if body == "" {
		return ""
	}
	if len(body) > maxSnippet {
		body = body[:maxSnippet] + "..."
	}
	return ": " + body
}
