// Package apperr defines the error kinds the CLI reports to the user and the
// exit codes they map to.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Exit codes returned by the process.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitInterrupt = 130
)

// ErrInterrupted is returned when the user cancels an operation (Ctrl+C).
var ErrInterrupted = errors.New("operation cancelled by user")

// ErrQuit is returned when the user picks the quit sentinel at a prompt.
var ErrQuit = errors.New("quit")

// APIError represents a failed call to the torrent index or a malformed
// response from it.
type APIError struct {
	Op  string // operation that failed (e.g. "search", "get torrent info")
	Err error  // underlying error, if any
}

func (e *APIError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to %s", e.Op)
	}
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// DownloadError represents a failure writing a torrent file to disk.
type DownloadError struct {
	Path string // file or directory involved
	Err  error
}

func (e *DownloadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("download failed: %v", e.Err)
	}
	return fmt.Sprintf("download failed for %s: %v", e.Path, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// ValidationError represents bad user input.
type ValidationError struct {
	Field  string // which input was rejected (query, selection, path, ...)
	Reason string // human-readable explanation
	Err    error
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Invalid is shorthand for a ValidationError without an underlying cause.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ConnectionError is returned when none of the configured mirrors answered.
type ConnectionError struct {
	Mirrors []string
	Err     error
}

func (e *ConnectionError) Error() string {
	msg := "no reachable endpoint"
	if len(e.Mirrors) > 0 {
		msg += " (tried " + strings.Join(e.Mirrors, ", ") + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Kind returns the label shown in front of an error message. The outermost
// kind in the wrap chain wins, so a DownloadError caused by a rejected path is
// still a download error.
func Kind(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch e.(type) {
		case *ConnectionError:
			return "Connection Error"
		case *ValidationError:
			return "Validation Error"
		case *DownloadError:
			return "Download Error"
		case *APIError:
			return "API Error"
		}
	}
	return "Error"
}

// Hint returns a follow-up suggestion for the error, or "" when there is none.
func Hint(err error) string {
	var (
		apiErr  *APIError
		valErr  *ValidationError
		connErr *ConnectionError
	)
	switch {
	case errors.As(err, &connErr):
		return "Connection error. Please check your internet connection."
	case errors.As(err, &valErr):
		return "Validation error: " + valErr.Reason
	case errors.As(err, &apiErr):
		return "Error communicating with the API. Please try again."
	default:
		return ""
	}
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, ErrQuit):
		return ExitOK
	case errors.Is(err, ErrInterrupted):
		return ExitInterrupt
	default:
		return ExitFailure
	}
}
