// Package errors provides structured error types for srcfetch.
//
// Errors carry a machine-readable [Code] so the CLI can decide which failures
// terminate a run and which only shrink the result set:
//
//   - NOT_FOUND, FILE_NOT_FOUND: a descriptor or repository root is missing
//   - UNSAFE_ARCHIVE_MEMBER: an archive tried to escape the extraction directory
//   - TIMEOUT: the external build tool did not finish in time
//   - MALFORMED_INPUT, EXTERNAL_TOOL: recovered locally as empty results
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "no such path: %s", dir)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // report and stop
//	}
//
//	err := errors.Wrap(errors.ErrCodeExternalTool, origErr, "mvn %s", goal)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidCoordinate Code = "INVALID_COORDINATE"
	ErrCodeInvalidPath       Code = "INVALID_PATH"
	ErrCodeMalformedInput    Code = "MALFORMED_INPUT"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Archive errors
	ErrCodeUnsafeArchiveMember Code = "UNSAFE_ARCHIVE_MEMBER"
	ErrCodeArchiveConflict     Code = "ARCHIVE_CONFLICT"
	ErrCodeInvalidArchive      Code = "INVALID_ARCHIVE"

	// External tool errors
	ErrCodeExternalTool Code = "EXTERNAL_TOOL"
	ErrCodeTimeout      Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Path    string // File the error refers to (optional)
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

// NotFound creates a FILE_NOT_FOUND error that records the missing path.
// The CLI prints the path as "File not found: <path>".
func NotFound(path string) *Error {
	return &Error{
		Code:    ErrCodeFileNotFound,
		Message: fmt.Sprintf("no such path: %s", path),
		Path:    path,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
// Joined errors match when any of their members does.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) && e.Code == code {
		return true
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, inner := range joined.Unwrap() {
			if Is(inner, code) {
				return true
			}
		}
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

// MissingPath returns the path recorded by a NOT_FOUND or FILE_NOT_FOUND
// error, and false for any other error.
func MissingPath(err error) (string, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	if e.Code != ErrCodeFileNotFound && e.Code != ErrCodeNotFound {
		return "", false
	}
	return e.Path, e.Path != ""
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
