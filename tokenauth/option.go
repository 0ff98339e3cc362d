package tokenauth

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/exobase-go/exobase"
	"github.com/exobase-go/exobase/validator"
)

// Option configures an Authenticator.
// Options return errors to enable validation during construction.
type Option func(*config) error

type config struct {
	claims    ClaimOptions
	validator *validator.Validator
	logger    exobase.Logger
	tracer    trace.Tracer
	metrics   exobase.Metrics
}

// WithType requires the token's type claim to equal t.
func WithType(t TokenType) Option {
	return func(c *config) error {
		if t != TokenTypeID && t != TokenTypeAccess {
			return ErrInvalidTokenType
		}
		c.claims.Type = t
		return nil
	}
}

// WithIssuer requires the token's iss claim to equal iss.
func WithIssuer(iss string) Option {
	return func(c *config) error {
		if iss == "" {
			return ErrIssuerEmpty
		}
		c.claims.Issuer = iss
		return nil
	}
}

// WithAudience requires the token's aud claim to be exactly aud.
func WithAudience(aud string) Option {
	return func(c *config) error {
		if aud == "" {
			return ErrAudienceEmpty
		}
		c.claims.Audience = aud
		return nil
	}
}

// WithClaims sets every claim constraint at once. Empty fields in opts
// disable the corresponding check.
func WithClaims(opts ClaimOptions) Option {
	return func(c *config) error {
		if opts.Type != "" && opts.Type != TokenTypeID && opts.Type != TokenTypeAccess {
			return ErrInvalidTokenType
		}
		c.claims = opts
		return nil
	}
}

// WithValidator replaces the default verifier, for example to narrow the
// accepted algorithms or allow clock skew.
//
// Default: validator.New() (HS256, HS384, HS512, no clock skew)
func WithValidator(v *validator.Validator) Option {
	return func(c *config) error {
		if v == nil {
			return ErrValidatorNil
		}
		c.validator = v
		return nil
	}
}

// WithLogger sets an optional logger. *slog.Logger satisfies exobase.Logger.
func WithLogger(logger exobase.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return ErrLoggerNil
		}
		c.logger = logger
		return nil
	}
}

// WithTracer sets the tracer used to span authentication.
//
// Default: the tracer of the global OpenTelemetry provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *config) error {
		if tracer == nil {
			return ErrTracerNil
		}
		c.tracer = tracer
		return nil
	}
}

// WithMetrics records one counter increment per request, labelled with the
// error key or "ok".
//
// Default: exobase.NoopMetrics
func WithMetrics(m exobase.Metrics) Option {
	return func(c *config) error {
		if m == nil {
			return ErrMetricsNil
		}
		c.metrics = m
		return nil
	}
}
