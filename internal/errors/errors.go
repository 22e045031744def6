package errors

import (
	"errors"
	"fmt"
)

// Domain error kinds. Services return these (possibly wrapped with context)
// and the transport layer maps them via Map. They are sentinels so callers
// can branch with errors.Is.
var (
	// ErrSelfReference: the operation targets the acting user itself.
	ErrSelfReference = errors.New("operation targets the acting user")

	// ErrProfileIncomplete: the actor's profile fails the completeness invariant.
	ErrProfileIncomplete = errors.New("profile is not completed")

	// ErrAlreadyLiked: the like edge already exists for this ordered pair.
	ErrAlreadyLiked = errors.New("profile already liked")

	// ErrNotConnected: no mutual-like connection between the pair.
	ErrNotConnected = errors.New("users are not connected")

	// ErrBlocked: a block exists in at least one direction between the pair.
	ErrBlocked = errors.New("users are blocked")

	// ErrNotFound: the referenced user or record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrValidation: malformed filter, range or input value.
	ErrValidation = errors.New("invalid input")
)

// Validationf wraps ErrValidation with a formatted reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound with a formatted reason.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
