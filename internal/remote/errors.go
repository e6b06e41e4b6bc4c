package remote

import (
	"errors"
	"fmt"
)

// Document store errors
var (
	// ErrNotFound is returned when the document path does not exist.
	// On first run the caller initializes an empty document.
	ErrNotFound = errors.New("document not found")

	// ErrVersionConflict is returned when a replace is attempted with a version
	// that no longer matches the stored document. The caller must fetch again
	// before retrying; re-pushing stale state is never correct.
	ErrVersionConflict = errors.New("document version conflict")

	// ErrTransport is returned for network, authentication and rate limit
	// failures. Retrying is left to the caller.
	ErrTransport = errors.New("document store transport failure")
)

// DocumentError wraps errors with the operation and path that failed.
type DocumentError struct {
	// Op is the operation that failed (e.g., "Fetch", "Replace").
	Op string

	// Path is the document path inside the store.
	Path string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string

	// ExpectedVersion and CurrentVersion are set on version conflicts when known.
	ExpectedVersion Version
	CurrentVersion  Version
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	msg := fmt.Sprintf("remote: %s %s failed: %v", e.Op, e.Path, e.Err)
	if e.Details != "" {
		msg = fmt.Sprintf("remote: %s %s failed: %s: %v", e.Op, e.Path, e.Details, e.Err)
	}
	if e.ExpectedVersion != "" || e.CurrentVersion != "" {
		msg += fmt.Sprintf(" (expected %s, current %s)", shortVersion(e.ExpectedVersion), shortVersion(e.CurrentVersion))
	}
	return msg
}

// Unwrap returns the underlying error for error unwrapping.
func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *DocumentError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewDocumentError creates a new DocumentError.
func NewDocumentError(op, path string, err error, details string) *DocumentError {
	return &DocumentError{
		Op:      op,
		Path:    path,
		Err:     err,
		Details: details,
	}
}

// WrapDocumentError wraps an error as a DocumentError if it isn't already one.
func WrapDocumentError(op, path string, err error, details string) error {
	if err == nil {
		return nil
	}

	var docErr *DocumentError
	if errors.As(err, &docErr) {
		return err
	}

	return NewDocumentError(op, path, err, details)
}

func conflictError(op, path string, expected, current Version) *DocumentError {
	return &DocumentError{
		Op:              op,
		Path:            path,
		Err:             ErrVersionConflict,
		ExpectedVersion: expected,
		CurrentVersion:  current,
	}
}

// IsNotFound reports whether err means the document does not exist.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err is a version conflict.
func IsConflict(err error) bool { return errors.Is(err, ErrVersionConflict) }

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool { return errors.Is(err, ErrTransport) }

func shortVersion(v Version) string {
	if v == "" {
		return "<none>"
	}
	if len(v) > 8 {
		return string(v[:8])
	}
	return string(v)
}
