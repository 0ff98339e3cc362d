package exobase

import (
	"errors"
	"net/http"
)

// Sentinel kinds for request errors. Use errors.Is to test an error against
// them; the concrete value is always an *Error.
var (
	// ErrNotAuthenticated is the kind for requests that present no usable
	// credential at all.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotAuthorized is the kind for requests whose credential is invalid,
	// expired, or fails a claim constraint.
	ErrNotAuthorized = errors.New("not authorized")
)

// Error is a request error carrying a stable machine-readable key.
// It is converted into an HTTP response by NewResponse.
type Error struct {
	// Kind is one of the package sentinels.
	Kind error

	// Status is the HTTP status the error maps to.
	Status int

	// Message is a human-readable message safe to return to clients.
	Message string

	// Key is a stable code such as "exo.err.jwt.expired".
	Key string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is allows the error to be compared with its kind sentinel.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// NotAuthenticated builds an ErrNotAuthenticated error (401).
func NotAuthenticated(message, key string) *Error {
	return &Error{
		Kind:    ErrNotAuthenticated,
		Status:  http.StatusUnauthorized,
		Message: message,
		Key:     key,
	}
}

// NotAuthorized builds an ErrNotAuthorized error (403) wrapping cause.
func NotAuthorized(message, key string, cause error) *Error {
	return &Error{
		Kind:    ErrNotAuthorized,
		Status:  http.StatusForbidden,
		Message: message,
		Key:     key,
		Cause:   cause,
	}
}

// ErrorKey returns the key of the *Error in err's chain, or "" if there is none.
func ErrorKey(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Key
	}
	return ""
}
