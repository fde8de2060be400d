// Package errors provides structured error types for the benchdef application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - UNKNOWN_PARENT, CYCLIC_EXTENDS, MISSING_VERSION, MALFORMED_ENTRY:
//     definition resolution failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownParent, "entry %q extends unknown parent %q", name, parent)
//	if errors.Is(err, errors.ErrCodeUnknownParent) {
//	    // Handle resolution error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidDocument, origErr, "failed to decode %s", path)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Definition resolution errors
	ErrCodeUnknownParent  Code = "UNKNOWN_PARENT"
	ErrCodeCyclicExtends  Code = "CYCLIC_EXTENDS"
	ErrCodeMissingVersion Code = "MISSING_VERSION"
	ErrCodeMalformedEntry Code = "MALFORMED_ENTRY"

	// Input validation errors
	ErrCodeInvalidDocument Code = "INVALID_DOCUMENT"
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidName     Code = "INVALID_NAME"

	// Resource not found errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"
	ErrCodeSnapshotNotFound Code = "SNAPSHOT_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// List aggregates errors from an operation that validates many entries and
// must report every failure rather than the first one encountered.
type List struct {
	Errs []error
}

// Append adds err to the list. Nil errors are ignored.
func (l *List) Append(err error) {
	if err != nil {
		l.Errs = append(l.Errs, err)
	}
}

// Len returns the number of collected errors.
func (l *List) Len() int {
	return len(l.Errs)
}

// ErrOrNil returns the list as an error, or nil when nothing was collected.
// A single-element list unwraps to that element.
func (l *List) ErrOrNil() error {
	switch len(l.Errs) {
	case 0:
		return nil
	case 1:
		return l.Errs[0]
	default:
		return l
	}
}

// Error implements the error interface.
func (l *List) Error() string {
	msgs := make([]string, len(l.Errs))
	for i, err := range l.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(l.Errs), strings.Join(msgs, "; "))
}

// Unwrap exposes the collected errors to errors.Is/As traversal.
func (l *List) Unwrap() []error {
	return l.Errs
}

// Has reports whether any collected error carries the given code.
func (l *List) Has(code Code) bool {
	for _, err := range l.Errs {
		if Is(err, code) {
			return true
		}
	}
	return false
}

// AnyCode reports whether err, or any error aggregated inside it,
// carries the given code. It handles both plain errors and Lists.
func AnyCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	var l *List
	if errors.As(err, &l) {
		return l.Has(code)
	}
	return Is(err, code)
}
