// Package errors provides structured error types for the gritea client.
//
// Every failure surfaced by the client carries a machine-readable [Code]
// that identifies its kind:
//   - URL_PARSE: a base URL or relative path could not be composed
//   - UNAUTHORIZED: no credential is configured
//   - GITEA_ERROR: the server answered with a non-success status
//   - TRANSPORT_ERROR: the request or response body could not be transferred
//   - DECODE_ERROR: the response body does not match the expected shape
//   - ENV_ERROR: required environment input is missing (CLI only)
//   - INVALID_INPUT: caller input was rejected before any request was sent
//
// # Usage
//
//	user, err := client.CurrentUser(ctx)
//	if errors.Is(err, errors.ErrCodeRemote) {
//	    var se *errors.StatusError
//	    stderrors.As(err, &se)
//	    fmt.Println(se.StatusCode, se.Body)
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeTransport, origErr, "send %s %s", method, url)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors
	ErrCodeURLParse Code = "URL_PARSE"
	ErrCodeEnv      Code = "ENV_ERROR"

	// Authentication errors
	ErrCodeUnauthorized Code = "UNAUTHORIZED"

	// Remote and transport errors
	ErrCodeRemote    Code = "GITEA_ERROR"
	ErrCodeTransport Code = "TRANSPORT_ERROR"
	ErrCodeDecode    Code = "DECODE_ERROR"

	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
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

// coder is implemented by error types that carry their own code.
type coder interface {
	Code() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or a typed error
// (such as [StatusError]) with a matching code.
func Is(err error, code Code) bool {
	return code != "" && GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c coder
	if errors.As(err, &c) {
		return c.Code()
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

// StatusError is returned when the server answers with a non-success status.
// It keeps the raw response body for diagnostics.
type StatusError struct {
	Label      string // Operation label, e.g. "get repo failed"
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: [%d %s] %s", e.Label, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// Code returns the error code for this error type.
func (e *StatusError) Code() Code {
	return ErrCodeRemote
}
