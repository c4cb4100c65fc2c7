// Package apperror defines the error taxonomy shared by every layer.
//
// The service layer returns these; the HTTP layer translates them to status
// codes with errors.Is/errors.As. Storage errors are deliberately opaque:
// the driver detail is kept for logging but never shown to a caller.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Check with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrStorage         = errors.New("storage failure")
)

// AppError carries a sentinel kind plus a human-readable message.
// Extract with errors.As to get the message; match the kind with errors.Is.
type AppError struct {
	Err     error  // one of the sentinels above
	Message string // safe to show to the caller
	Field   string // optional: input field at fault
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ValidationFailed reports malformed or missing input. Never retryable.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Unauthenticated reports that no user identity could be resolved.
func Unauthenticated(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// Forbidden reports an authenticated caller acting outside their rights,
// e.g. editing a poll they do not own.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// NotFound reports a missing poll, option, comment, or user.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// DuplicateVote reports a second vote by the same voter on the same poll.
// It is produced from the store's uniqueness violation, never from a
// read-then-check in application code.
func DuplicateVote(pollID string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("you have already voted on poll %s", pollID),
	}
}

// Conflict reports a uniqueness collision other than a duplicate vote
// (e.g. an email address that is already registered).
func Conflict(resource, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
		Field:   resource,
	}
}

// Storage wraps an unexpected failure from the store. The cause stays in
// the chain for logs; the message exposed to callers is generic.
func Storage(cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrStorage, cause),
		Message: "a storage error occurred",
	}
}

// IsKind reports whether err matches the given sentinel.
func IsKind(err, kind error) bool {
	return errors.Is(err, kind)
}
