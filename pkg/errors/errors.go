// Package errors provides structured error types for randlist.
//
// Every failure in the codec pipeline is unrecoverable at the point of
// detection and surfaces as a single *Error carrying a machine-readable code.
// The codes are grouped into the categories the CLI and the HTTP server
// report on:
//
//   - IO_ERROR: a byte sink or source is unavailable
//   - PARSE_*: a malformed input line (see [IsParseError])
//   - INVALID_CROSS_REFERENCE: a cross-reference outside {-1} ∪ [0, count)
//   - TRUNCATED_STREAM: fewer bytes than a declared length promises
//   - TOO_MANY_NODES: the node count exceeds the input guard
//   - MISMATCH_*: round-trip disagreement (see [IsRoundTripMismatch])
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMissingSeparator, "line %d: no separator ';'", n)
//	if errors.IsParseError(err) {
//	    // reject the input file
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Sink and source errors
	ErrCodeIO Code = "IO_ERROR"

	// Input parse errors
	ErrCodeMissingSeparator   Code = "PARSE_MISSING_SEPARATOR"
	ErrCodeInvalidIndexFormat Code = "PARSE_INVALID_INDEX_FORMAT"

	// Structural errors
	ErrCodeInvalidCrossReference Code = "INVALID_CROSS_REFERENCE"
	ErrCodeTruncatedStream       Code = "TRUNCATED_STREAM"
	ErrCodeTooManyNodes          Code = "TOO_MANY_NODES"

	// Round-trip mismatches
	ErrCodeLengthMismatch         Code = "MISMATCH_LENGTH"
	ErrCodeContentMismatch        Code = "MISMATCH_CONTENT"
	ErrCodeCrossReferenceMismatch Code = "MISMATCH_CROSS_REFERENCE"

	// Request and configuration errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidKey    Code = "INVALID_KEY"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeNotFound      Code = "NOT_FOUND"

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
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// IsParseError reports whether err is a malformed input line.
func IsParseError(err error) bool {
	switch GetCode(err) {
	case ErrCodeMissingSeparator, ErrCodeInvalidIndexFormat:
		return true
	}
	return false
}

// IsRoundTripMismatch reports whether err is a disagreement between a
// reference sequence and a reconstructed one.
func IsRoundTripMismatch(err error) bool {
	switch GetCode(err) {
	case ErrCodeLengthMismatch, ErrCodeContentMismatch, ErrCodeCrossReferenceMismatch:
		return true
	}
	return false
}

// IsInputError reports whether err was caused by the data handed to the
// codec rather than by the environment. Servers map these to client errors.
func IsInputError(err error) bool {
	switch GetCode(err) {
	case ErrCodeMissingSeparator, ErrCodeInvalidIndexFormat,
		ErrCodeInvalidCrossReference, ErrCodeTruncatedStream,
		ErrCodeTooManyNodes, ErrCodeInvalidInput, ErrCodeInvalidKey:
		return true
	}
	return false
}
