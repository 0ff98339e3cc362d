package exogin

import "github.com/exobase-go/exobase"

// Option defines a functional option for configuring the adapter.
type Option func(*config)

type config struct {
	logger       exobase.Logger
	maxBodyBytes int64
}

func newConfig(opts []Option) *config {
	cfg := &config{maxBodyBytes: exobase.DefaultMaxBodyBytes}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithLogger sets an optional logger for the adapter.
func WithLogger(logger exobase.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMaxBodyBytes caps the request body read into props. Values below 1
// are ignored.
func WithMaxBodyBytes(n int64) Option {
	return func(c *config) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}
