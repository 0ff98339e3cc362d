package exogrpc

import "github.com/exobase-go/exobase"

// Option defines a functional option for configuring the interceptors.
type Option func(*config)

type config struct {
	logger   exobase.Logger
	excluded func(method string) bool
}

func newConfig(opts []Option) *config {
	cfg := &config{excluded: func(string) bool { return false }}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithLogger sets a logger for rejected calls.
func WithLogger(logger exobase.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithExcludedMethods skips the hook for the given full method names, such
// as "/grpc.health.v1.Health/Check".
func WithExcludedMethods(methods ...string) Option {
	set := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		set[m] = struct{}{}
	}
	return func(c *config) {
		c.excluded = func(method string) bool {
			_, ok := set[method]
			return ok
		}
	}
}
