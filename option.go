package exobase

import "errors"

// Option configures the HTTPHandler.
// Returns error for validation failures.
type Option func(*HTTPHandler) error

// WithLogger sets an optional logger for the HTTP adapter.
//
// The logger interface is compatible with log/slog.Logger and similar loggers.
func WithLogger(logger Logger) Option {
	return func(h *HTTPHandler) error {
		if logger == nil {
			return ErrLoggerNil
		}
		h.logger = logger
		return nil
	}
}

// WithMaxBodyBytes caps the request body read into Props.Request.Body.
//
// Default: DefaultMaxBodyBytes (1 MiB)
func WithMaxBodyBytes(n int64) Option {
	return func(h *HTTPHandler) error {
		if n <= 0 {
			return ErrMaxBodyBytesInvalid
		}
		h.maxBodyBytes = n
		return nil
	}
}

// Sentinel errors for configuration validation
var (
	ErrHandlerNil          = errors.New("handler cannot be nil")
	ErrLoggerNil           = errors.New("logger cannot be nil")
	ErrMaxBodyBytesInvalid = errors.New("max body bytes must be positive")
)
