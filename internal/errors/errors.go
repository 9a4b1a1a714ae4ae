// Package errors provides structured error types for tplslim with
// categorization, error codes, and recoverability information used by the
// minification pipeline to decide between fallback and abort.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeTransform  ErrorType = "transform"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// SlimError is a structured error type with context.
type SlimError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	FilePath    string
	Line        int
	Recoverable bool
}

// Error implements the error interface.
func (e *SlimError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.FilePath != "" {
		location := e.FilePath
		if e.Line > 0 {
			location += fmt.Sprintf(":%d", e.Line)
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *SlimError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *SlimError) Is(target error) bool {
	var t *SlimError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithLocation adds file location information.
func (e *SlimError) WithLocation(filePath string, line int) *SlimError {
	e.FilePath = filePath
	e.Line = line

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *SlimError {
	return &SlimError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *SlimError {
	return &SlimError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewTransformError creates a transform error. Transform errors are
// recoverable: the minifier responds to them by switching to the
// line-oriented fallback path instead of aborting the operation.
func NewTransformError(code, message string, cause error) *SlimError {
	return &SlimError{
		Type:        ErrorTypeTransform,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *SlimError {
	return &SlimError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *SlimError {
	return &SlimError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var se *SlimError
	if errors.As(err, &se) {
		return se.Recoverable
	}

	return false
}

// IsTransformError checks if an error is transform-related.
func IsTransformError(err error) bool {
	var se *SlimError
	if errors.As(err, &se) {
		return se.Type == ErrorTypeTransform
	}

	return false
}
