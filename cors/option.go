package cors

import "github.com/exobase-go/exobase"

// Option is how options for the CORS hook are set up.
type Option func(*config)

type config struct {
	logger  exobase.Logger
	metrics exobase.Metrics
}

// WithLogger sets an optional logger. A nil logger keeps logging disabled.
func WithLogger(logger exobase.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics counts answered preflight requests. A nil value keeps the
// default exobase.NoopMetrics.
func WithMetrics(m exobase.Metrics) Option {
	return func(c *config) {
		if m != nil {
			c.metrics = m
		}
	}
}
