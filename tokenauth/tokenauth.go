package tokenauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/exobase-go/exobase"
	"github.com/exobase-go/exobase/validator"
)

const (
	bearerPrefix = "Bearer "
	tracerName   = "github.com/exobase-go/exobase/tokenauth"
	metricName   = "token_auth_requests_total"
)

// Authenticator enforces bearer-token authentication for a handler chain.
// T is the type the token's claims are decoded into for Token.Extra.
// It holds no per-request state and is safe for concurrent use.
type Authenticator[T any] struct {
	secret Secret
	config
}

// New builds an Authenticator that verifies tokens against secret.
//
// Example:
//
//	auth, err := tokenauth.New[MyClaims](
//	    tokenauth.StaticSecret(os.Getenv("TOKEN_SECRET")),
//	    tokenauth.WithType(tokenauth.TokenTypeAccess),
//	    tokenauth.WithIssuer("https://auth.example.com"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	endpoint := auth.Hook(handler)
func New[T any](secret Secret, opts ...Option) (*Authenticator[T], error) {
	if secret == nil {
		return nil, ErrSecretNil
	}

	a := &Authenticator[T]{secret: secret}
	for _, opt := range opts {
		if err := opt(&a.config); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if a.validator == nil {
		v, err := validator.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create validator: %w", err)
		}
		a.validator = v
	}
	if a.tracer == nil {
		a.tracer = otel.Tracer(tracerName)
	}
	if a.metrics == nil {
		a.metrics = exobase.NoopMetrics{}
	}

	return a, nil
}

// UseTokenAuth returns a hook that only calls the wrapped handler for
// requests carrying a valid bearer token. The handler receives props whose
// Auth holds the decoded Token[T] under TokenKey.
//
// Any claim shape is accepted. A claim that does not fit T, such as a
// numeric "email" for a string field, leaves that field of Token.Extra zero
// and is still available in Token.Raw.
func UseTokenAuth[T any](secret Secret, opts ...Option) (exobase.Hook, error) {
	a, err := New[T](secret, opts...)
	if err != nil {
		return nil, err
	}
	return a.Hook, nil
}

// Hook wraps next with token authentication.
func (a *Authenticator[T]) Hook(next exobase.Handler) exobase.Handler {
	return func(ctx context.Context, props exobase.Props) (any, error) {
		token, err := a.Authenticate(ctx, props)
		if err != nil {
			return nil, err
		}
		return next(ctx, props.WithAuth(TokenKey, token))
	}
}

// Authenticate runs extraction, secret resolution, verification and claim
// validation for one request. It never modifies props.
func (a *Authenticator[T]) Authenticate(ctx context.Context, props exobase.Props) (Token[T], error) {
	ctx, span := a.tracer.Start(ctx, "tokenauth.Authenticate")
	defer span.End()

	token, err := a.authenticate(ctx, props)

	result := "ok"
	if err != nil {
		result = exobase.ErrorKey(err)
		if result == "" {
			result = "error"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.String("exobase.auth.result", result))
	a.metrics.IncCounter(metricName, map[string]string{"result": result})

	return token, err
}

func (a *Authenticator[T]) authenticate(ctx context.Context, props exobase.Props) (Token[T], error) {
	if a.logger != nil {
		a.logger.Debug("extracting bearer token",
			"method", props.Request.Method,
			"path", props.Request.Path)
	}

	raw, err := extractBearerToken(props.Request)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("no usable bearer token", "error", err)
		}
		return Token[T]{}, err
	}

	secret, err := a.secret.Resolve(ctx, props)
	if err != nil {
		if a.logger != nil {
			a.logger.Error("failed to resolve token secret", "error", err)
		}
		return Token[T]{}, fmt.Errorf("resolving token secret: %w", err)
	}

	claims, err := a.validator.Verify(ctx, raw, secret)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("token verification failed", "error", err)
		}
		if errors.Is(err, validator.ErrTokenExpired) {
			return Token[T]{}, exobase.NotAuthorized("Provided token is expired", KeyTokenExpired, err)
		}
		return Token[T]{}, invalidToken(err)
	}

	token, err := decodeToken[T](claims)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("token claims could not be decoded", "error", err)
		}
		return Token[T]{}, invalidToken(err)
	}

	if err := ValidateClaims(token, a.claims); err != nil {
		if a.logger != nil {
			a.logger.Warn("token claims rejected", "error", err, "key", exobase.ErrorKey(err))
		}
		return Token[T]{}, err
	}

	if a.logger != nil {
		a.logger.Debug("token authenticated", "subject", token.Subject, "type", token.Type)
	}
	return token, nil
}

// extractBearerToken reads the authorization header. Only the exact
// "Bearer " prefix is accepted.
func extractBearerToken(req exobase.Request) (string, error) {
	header, _ := req.Header("authorization")
	if header == "" {
		return "", exobase.NotAuthenticated("This function requires authentication via a token", KeyMissingToken)
	}

	if !strings.HasPrefix(header, bearerPrefix) {
		return "", exobase.NotAuthenticated("This function requires an authentication via a token", KeyMalformedHeader)
	}

	return strings.TrimPrefix(header, bearerPrefix), nil
}

func invalidToken(cause error) error {
	return exobase.NotAuthorized("Cannot call this function without a valid authentication token", KeyInvalidToken, cause)
}
