package speech

import (
	"errors"
	"fmt"
)

// Common speech errors
var (
	// ErrNoEngineConfigured indicates no engine has been selected
	ErrNoEngineConfigured = errors.New("no speech engine configured - specify --engine gtts or --engine mock")

	// ErrInvalidEngine indicates an unknown engine was specified
	ErrInvalidEngine = errors.New("invalid speech engine specified")

	// ErrEmptyText indicates there was nothing to synthesize
	ErrEmptyText = errors.New("text cannot be empty")
)

// ErrorCode identifies specific error types
type ErrorCode string

const (
	ErrorCodeEngineFailure     ErrorCode = "ENGINE_FAILURE"
	ErrorCodeEngineUnavailable ErrorCode = "ENGINE_UNAVAILABLE"
	ErrorCodeEngineTimeout     ErrorCode = "ENGINE_TIMEOUT"
	ErrorCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrorCodeTextTooLong       ErrorCode = "TEXT_TOO_LONG"
)

// Error is a synthesis error with a code and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// NewError creates a new speech error.
func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether trying again later could succeed.
func (e *Error) IsRetryable() bool {
	switch e.Code {
	case ErrorCodeEngineTimeout, ErrorCodeEngineFailure:
		return true
	default:
		return false
	}
}
