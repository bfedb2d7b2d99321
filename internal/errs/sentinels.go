// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service/session layers.
var (
	// ErrValidation indicates a missing or malformed input field.
	ErrValidation = errors.New("validation")

	// ErrUnauthorized indicates a passcode mismatch for an existing user.
	ErrUnauthorized = errors.New("incorrect credential")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition indicates a lifecycle change from a terminal goal status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrSessionClosed indicates use of a session after logout.
	ErrSessionClosed = errors.New("session closed")
)
