// Package pipeline holds fssearchd's structured error type and process exit
// codes. This file defines the SearchError type for structured error
// handling with exit codes, enabling commands to communicate specific exit
// codes back to main.go.
package pipeline

import "fmt"

// SearchError is a custom error type that carries an exit code for structured
// error handling. Commands in the CLI use this to communicate specific exit
// codes back to main.go. It implements the error interface and supports
// unwrapping via errors.Is and errors.As.
type SearchError struct {
	// Code is the process exit code associated with this error.
	Code int

	// Message is a human-readable description of what went wrong.
	Message string

	// Err is the underlying error that caused this SearchError, if any.
	Err error
}

// Error returns the formatted error message. If an underlying error is present,
// it is included in the output separated by a colon.
func (e *SearchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As to
// traverse the error chain.
func (e *SearchError) Unwrap() error {
	return e.Err
}

// NewError creates a SearchError with ExitError (1) code for fatal errors,
// such as a malformed configuration or a transport that failed to bind.
func NewError(msg string, err error) *SearchError {
	return &SearchError{Code: int(ExitError), Message: msg, Err: err}
}

// NewNotFoundError creates a SearchError with ExitError (1) code for lookups
// against a session identifier the registry does not recognize.
func NewNotFoundError(msg string) *SearchError {
	return &SearchError{Code: int(ExitError), Message: msg}
}
