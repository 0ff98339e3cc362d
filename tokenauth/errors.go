package tokenauth

import "errors"

// Stable keys carried by the *exobase.Error values the hook returns.
const (
	KeyMissingToken    = "exo.err.jwt.canes-venatici"
	KeyMalformedHeader = "exo.err.jwt.canes-veeticar"
	KeyTokenExpired    = "exo.err.jwt.expired"
	KeyInvalidToken    = "exo.err.jwt.canis-major"
	KeyWrongType       = "exo.err.jwt.caprorilous"
	KeyWrongIssuer     = "exo.err.jwt.caprisaur"
	KeyWrongAudience   = "exo.err.jwt.halliphace"
)

// Sentinel errors for configuration validation.
var (
	ErrSecretNil        = errors.New("secret cannot be nil")
	ErrValidatorNil     = errors.New("validator cannot be nil")
	ErrInvalidTokenType = errors.New(`token type must be "id" or "access"`)
	ErrIssuerEmpty      = errors.New("issuer cannot be empty")
	ErrAudienceEmpty    = errors.New("audience cannot be empty")
	ErrLoggerNil        = errors.New("logger cannot be nil")
	ErrTracerNil        = errors.New("tracer cannot be nil")
	ErrMetricsNil       = errors.New("metrics cannot be nil")

	// ErrTokenNotFound is returned by GetToken when props carry no token.
	ErrTokenNotFound = errors.New("token not found in props")
)
