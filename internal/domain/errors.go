package domain

import (
	"errors"
	"fmt"
)

// ErrorType discriminates the failures an operation can surface.
type ErrorType string

const (
	ErrorTypeExecutableNotFound ErrorType = "executable_not_found"
	ErrorTypeInvalidArguments   ErrorType = "invalid_arguments"
	ErrorTypePasswordRequired   ErrorType = "password_required"
	ErrorTypeIncorrectPassword  ErrorType = "incorrect_password"
	ErrorTypeTimeout            ErrorType = "timeout"
	ErrorTypeProcessFailed      ErrorType = "process_failed"
	ErrorTypeMalformedOutput    ErrorType = "malformed_output"
	ErrorTypeNotPDF             ErrorType = "not_pdf"
	ErrorTypePageOutOfRange     ErrorType = "page_out_of_range"
	ErrorTypePermissionDenied   ErrorType = "permission_denied"
	ErrorTypeStdinWrite         ErrorType = "stdin_write"
	ErrorTypeIO                 ErrorType = "io"
	ErrorTypeConfig             ErrorType = "config"
)

// DomainError represents a domain-specific error with context.
// ExitCode and Stderr are populated for failures that came from a finished process.
type DomainError struct {
	Type     ErrorType
	Message  string
	Err      error
	ExitCode int
	Stderr   string
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type, e.Message)
	if e.Type == ErrorTypeProcessFailed {
		msg = fmt.Sprintf("%s (exit code %d)", msg, e.ExitCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError of the same type, so the
// sentinels below can be used with errors.Is.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Type == e.Type
}

// Sentinels for errors.Is matching by type.
var (
	ErrExecutableNotFound = &DomainError{Type: ErrorTypeExecutableNotFound}
	ErrInvalidArguments   = &DomainError{Type: ErrorTypeInvalidArguments}
	ErrPasswordRequired   = &DomainError{Type: ErrorTypePasswordRequired}
	ErrIncorrectPassword  = &DomainError{Type: ErrorTypeIncorrectPassword}
	ErrTimeout            = &DomainError{Type: ErrorTypeTimeout}
	ErrProcessFailed      = &DomainError{Type: ErrorTypeProcessFailed}
	ErrMalformedOutput    = &DomainError{Type: ErrorTypeMalformedOutput}
	ErrNotPDF             = &DomainError{Type: ErrorTypeNotPDF}
	ErrPageOutOfRange     = &DomainError{Type: ErrorTypePageOutOfRange}
	ErrPermissionDenied   = &DomainError{Type: ErrorTypePermissionDenied}
)

// TypeOf returns the ErrorType carried by err, or "" when err is not a DomainError.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ""
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func InvalidArgumentsError(message string, err error) *DomainError {
	return NewError(ErrorTypeInvalidArguments, message, err)
}

func ExecutableNotFoundError(message string, err error) *DomainError {
	return NewError(ErrorTypeExecutableNotFound, message, err)
}

func TimeoutError(message string, err error) *DomainError {
	return NewError(ErrorTypeTimeout, message, err)
}

func MalformedOutputError(message string, err error) *DomainError {
	return NewError(ErrorTypeMalformedOutput, message, err)
}

func IOError(message string, err error) *DomainError {
	return NewError(ErrorTypeIO, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

// ProcessFailedError keeps the raw stderr so callers can diagnose exits the
// classifier did not recognise.
func ProcessFailedError(tool string, exitCode int, stderr string) *DomainError {
	return &DomainError{
		Type:     ErrorTypeProcessFailed,
		Message:  fmt.Sprintf("%s failed", tool),
		ExitCode: exitCode,
		Stderr:   stderr,
	}
}
