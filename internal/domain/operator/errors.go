package operator

import "errors"

var (
	// ErrSessionNotFound indicates no session matches the token.
	ErrSessionNotFound = errors.New("operator session not found")
	// ErrSessionExpired indicates the session is past its expiry.
	ErrSessionExpired = errors.New("operator session expired")
	// ErrIncompleteSession indicates the session carries no operator identity.
	ErrIncompleteSession = errors.New("operator session has no identity")
	// ErrInvalidInput indicates invalid session input.
	ErrInvalidInput = errors.New("invalid operator session input")
)
