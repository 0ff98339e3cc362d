package validator

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenExpired is the kind of a token whose exp claim has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is the kind of every other verification failure:
	// bad signature, malformed token, wrong secret, unexpected algorithm.
	ErrTokenInvalid = errors.New("token invalid")
)

// VerificationError wraps a failure from the JWT library with the kind it
// was classified as.
type VerificationError struct {
	kind    error
	details error
}

// Is allows the error to support equality to its kind.
func (e *VerificationError) Is(target error) bool {
	return target == e.kind
}

// Error returns a string representation of the error.
func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.details)
}

// Unwrap allows the error to support equality to the underlying error.
func (e *VerificationError) Unwrap() error {
	return e.details
}
