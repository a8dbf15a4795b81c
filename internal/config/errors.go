package config

import (
	"errors"
	"fmt"
)

// ErrorCode classifies configuration errors
type ErrorCode string

const (
	ErrorCodeUnknownProvider ErrorCode = "UnknownProvider"
	ErrorCodeUnknownGroup    ErrorCode = "UnknownGroup"
	ErrorCodeInvalidProvider ErrorCode = "InvalidProvider"
	ErrorCodeInvalidSetting  ErrorCode = "InvalidSetting"
	ErrorCodeLoad            ErrorCode = "Load"
)

// Error is a configuration error surfaced before any upload is attempted
type Error struct {
	Code    ErrorCode
	Name    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a configuration error
func NewError(code ErrorCode, name, message string, err error) *Error {
	return &Error{Code: code, Name: name, Message: message, Err: err}
}

// UnknownProvider reports a reference to a provider that is not configured
// or not enabled
func UnknownProvider(name, reason string) *Error {
	return NewError(ErrorCodeUnknownProvider, name, fmt.Sprintf("provider %q %s", name, reason), nil)
}

// UnknownGroup reports a reference to an undefined provider group
func UnknownGroup(name string) *Error {
	return NewError(ErrorCodeUnknownGroup, name, fmt.Sprintf("provider group %q is not defined", name), nil)
}

// InvalidProvider reports a malformed provider entry
func InvalidProvider(name, message string) *Error {
	return NewError(ErrorCodeInvalidProvider, name, fmt.Sprintf("provider %q: %s", name, message), nil)
}

// HasCode reports whether err is a configuration error with the given code
func HasCode(err error, code ErrorCode) bool {
	var cfgErr *Error
	return errors.As(err, &cfgErr) && cfgErr.Code == code
}
