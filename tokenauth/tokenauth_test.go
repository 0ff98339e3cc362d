package tokenauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/exobase-go/exobase"
	"github.com/exobase-go/exobase/validator"
)

const testSecret = "your-256-bit-secret-is-just-enough"

type userClaims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

func mintToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func propsWithAuthHeader(header string) exobase.Props {
	headers := map[string]string{}
	if header != "" {
		headers["authorization"] = header
	}
	return exobase.NewProps(exobase.Request{
		Method:  "GET",
		Path:    "/users/me",
		Headers: headers,
	})
}

// mockLogger records calls for assertions.
type mockLogger struct {
	debugCalls []string
	warnCalls  []string
	errorCalls []string
}

func (m *mockLogger) Debug(msg string, _ ...any) { m.debugCalls = append(m.debugCalls, msg) }
func (m *mockLogger) Info(string, ...any)        {}
func (m *mockLogger) Warn(msg string, _ ...any)  { m.warnCalls = append(m.warnCalls, msg) }
func (m *mockLogger) Error(msg string, _ ...any) { m.errorCalls = append(m.errorCalls, msg) }

// mockMetrics records counter increments.
type mockMetrics struct {
	results []string
}

func (m *mockMetrics) IncCounter(_ string, labels map[string]string) {
	m.results = append(m.results, labels["result"])
}

func TestUseTokenAuth(t *testing.T) {
	valid := jwt.MapClaims{
		"sub":   "user-1",
		"type":  "access",
		"iss":   "exobase",
		"aud":   "api",
		"email": "jane@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}

	testCases := []struct {
		name      string
		header    string
		options   []Option
		wantKind  error
		wantKey   string
		wantCalls int
	}{
		{
			name:     "missing authorization header",
			header:   "",
			wantKind: exobase.ErrNotAuthenticated,
			wantKey:  KeyMissingToken,
		},
		{
			name:     "wrong scheme",
			header:   "Token abc",
			wantKind: exobase.ErrNotAuthenticated,
			wantKey:  KeyMalformedHeader,
		},
		{
			name:     "lower-case bearer scheme",
			header:   "bearer " + mintToken(t, valid, testSecret),
			wantKind: exobase.ErrNotAuthenticated,
			wantKey:  KeyMalformedHeader,
		},
		{
			name:     "bearer without token",
			header:   "Bearer ",
			wantKind: exobase.ErrNotAuthorized,
			wantKey:  KeyInvalidToken,
		},
		{
			name:     "token signed with another secret",
			header:   "Bearer " + mintToken(t, valid, "another-secret"),
			wantKind: exobase.ErrNotAuthorized,
			wantKey:  KeyInvalidToken,
		},
		{
			name:     "malformed token",
			header:   "Bearer abc.def.ghi",
			wantKind: exobase.ErrNotAuthorized,
			wantKey:  KeyInvalidToken,
		},
		{
			name: "expired token",
			header: "Bearer " + mintToken(t, jwt.MapClaims{
				"type": "access",
				"exp":  time.Now().Add(-time.Hour).Unix(),
			}, testSecret),
			wantKind: exobase.ErrNotAuthorized,
			wantKey:  KeyTokenExpired,
		},
		{
			name:      "valid token without options",
			header:    "Bearer " + mintToken(t, valid, testSecret),
			wantCalls: 1,
		},
		{
			name:      "valid token with a string audience matching every claim option",
			header:    "Bearer " + mintToken(t, valid, testSecret),
			options:   []Option{WithType(TokenTypeAccess), WithIssuer("exobase"), WithAudience("api")},
			wantCalls: 1,
		},
		{
			name:     "wrong type",
			header:   "Bearer " + mintToken(t, jwt.MapClaims{"type": "id"}, testSecret),
			options:  []Option{WithType(TokenTypeAccess)},
			wantKind: exobase.ErrNotAuthorized,
			wantKey:  KeyWrongType,
		},
		{
			name:     "missing type",
			header:   "Bearer " + mintToken(t, jwt.MapClaims{"iss": "exobase"}, testSecret),
			options:  []Option{WithType(TokenTypeID)},
			wantKind: exobase.ErrNotAuthorized,
			wantKey:  KeyWrongType,
		},
		{
			name:     "wrong issuer",
			header:   "Bearer " + mintToken(t, valid, testSecret),
			options:  []Option{WithIssuer("someone-else")},
			wantKind: exobase.ErrNotAuthorized,
			wantKey:  KeyWrongIssuer,
		},
		{
			name: "audience as a one-element array",
			header: "Bearer " + mintToken(t, jwt.MapClaims{
				"type": "access",
				"iss":  "exobase",
				"aud":  []string{"api"},
			}, testSecret),
			options:  []Option{WithType(TokenTypeAccess), WithIssuer("exobase"), WithAudience("api")},
			wantKind: exobase.ErrNotAuthorized,
			wantKey:  KeyWrongAudience,
		},
		{
			name:     "wrong audience",
			header:   "Bearer " + mintToken(t, valid, testSecret),
			options:  []Option{WithAudience("admin")},
			wantKind: exobase.ErrNotAuthorized,
			wantKey:  KeyWrongAudience,
		},
		{
			name:     "type failure is reported before issuer failure",
			header:   "Bearer " + mintToken(t, jwt.MapClaims{"type": "id", "iss": "other"}, testSecret),
			options:  []Option{WithIssuer("exobase"), WithType(TokenTypeAccess)},
			wantKind: exobase.ErrNotAuthorized,
			wantKey:  KeyWrongType,
		},
		{
			name:     "issuer failure is reported before audience failure",
			header:   "Bearer " + mintToken(t, jwt.MapClaims{"iss": "other", "aud": "other"}, testSecret),
			options:  []Option{WithAudience("api"), WithIssuer("exobase")},
			wantKind: exobase.ErrNotAuthorized,
			wantKey:  KeyWrongIssuer,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			hook, err := UseTokenAuth[userClaims](StaticSecret(testSecret), testCase.options...)
			require.NoError(t, err)

			calls := 0
			var gotProps exobase.Props
			endpoint := hook(func(_ context.Context, props exobase.Props) (any, error) {
				calls++
				gotProps = props
				return "ok", nil
			})

			result, err := endpoint(context.Background(), propsWithAuthHeader(testCase.header))
			assert.Equal(t, testCase.wantCalls, calls)

			if testCase.wantKind != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, testCase.wantKind)
				assert.Equal(t, testCase.wantKey, exobase.ErrorKey(err))
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "ok", result)

			token, err := GetToken[userClaims](gotProps)
			require.NoError(t, err)
			assert.Equal(t, "user-1", token.Subject)
			assert.Equal(t, "access", token.Type)
			assert.Equal(t, "exobase", token.Issuer)
			assert.Equal(t, []string{"api"}, token.Audience)
			assert.Equal(t, "jane@example.com", token.Extra.Email)
			assert.Equal(t, "jane@example.com", token.Raw["email"])
		})
	}
}

func TestUseTokenAuth_ExtraClaimsOfAnyShape(t *testing.T) {
	hook, err := UseTokenAuth[userClaims](StaticSecret(testSecret))
	require.NoError(t, err)

	header := "Bearer " + mintToken(t, jwt.MapClaims{
		"sub":   "user-2",
		"email": 42,
		"roles": []string{"admin"},
	}, testSecret)

	calls := 0
	var token Token[userClaims]
	_, err = hook(func(_ context.Context, props exobase.Props) (any, error) {
		calls++
		token, err = GetToken[userClaims](props)
		return nil, err
	})(context.Background(), propsWithAuthHeader(header))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "user-2", token.Subject)
	assert.Empty(t, token.Extra.Email)
	assert.Equal(t, []string{"admin"}, token.Extra.Roles)
	assert.Equal(t, float64(42), token.Raw["email"])
}

func TestUseTokenAuth_WrapsVerificationCause(t *testing.T) {
	hook, err := UseTokenAuth[struct{}](StaticSecret(testSecret))
	require.NoError(t, err)

	expired := mintToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()}, testSecret)
	_, err = hook(nil)(context.Background(), propsWithAuthHeader("Bearer "+expired))

	assert.ErrorIs(t, err, validator.ErrTokenExpired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	var exoErr *exobase.Error
	require.True(t, errors.As(err, &exoErr))
	assert.Equal(t, "Provided token is expired", exoErr.Message)
	assert.Equal(t, 403, exoErr.Status)
}

func TestUseTokenAuth_DoesNotMutateProps(t *testing.T) {
	hook, err := UseTokenAuth[struct{}](StaticSecret(testSecret))
	require.NoError(t, err)

	props := propsWithAuthHeader("Bearer " + mintToken(t, jwt.MapClaims{"sub": "user-1"}, testSecret))
	props.Auth = map[string]any{"apiKey": "k-1", TokenKey: "stale"}

	var gotAuth map[string]any
	_, err = hook(func(_ context.Context, p exobase.Props) (any, error) {
		gotAuth = p.Auth
		return nil, nil
	})(context.Background(), props)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"apiKey": "k-1", TokenKey: "stale"}, props.Auth)
	assert.Equal(t, "k-1", gotAuth["apiKey"])
	assert.IsType(t, Token[struct{}]{}, gotAuth[TokenKey])
}

func TestUseTokenAuth_SecretResolver(t *testing.T) {
	t.Run("it resolves the secret once per request with the current props", func(t *testing.T) {
		var calls int
		var seen []string
		resolver := SecretResolverFunc(func(_ context.Context, props exobase.Props) (string, error) {
			calls++
			seen = append(seen, props.Request.Headers["x-tenant"])
			return testSecret, nil
		})

		hook, err := UseTokenAuth[struct{}](resolver)
		require.NoError(t, err)
		endpoint := hook(func(context.Context, exobase.Props) (any, error) { return nil, nil })

		for _, tenant := range []string{"a", "b"} {
			props := propsWithAuthHeader("Bearer " + mintToken(t, jwt.MapClaims{"sub": tenant}, testSecret))
			props.Request.Headers["x-tenant"] = tenant
			_, err := endpoint(context.Background(), props)
			require.NoError(t, err)
		}

		assert.Equal(t, 2, calls)
		assert.Equal(t, []string{"a", "b"}, seen)
	})

	t.Run("it does not resolve the secret when the header is missing", func(t *testing.T) {
		resolver := SecretResolverFunc(func(context.Context, exobase.Props) (string, error) {
			t.Fatal("resolver should not be called without a token")
			return "", nil
		})

		hook, err := UseTokenAuth[struct{}](resolver)
		require.NoError(t, err)

		_, err = hook(nil)(context.Background(), propsWithAuthHeader(""))
		assert.ErrorIs(t, err, exobase.ErrNotAuthenticated)
	})

	t.Run("it propagates resolver errors", func(t *testing.T) {
		boom := errors.New("vault unavailable")
		resolver := SecretResolverFunc(func(context.Context, exobase.Props) (string, error) {
			return "", boom
		})

		hook, err := UseTokenAuth[struct{}](resolver)
		require.NoError(t, err)

		_, err = hook(nil)(context.Background(), propsWithAuthHeader("Bearer abc"))
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, exobase.ErrorKey(err))
	})
}

func TestUseTokenAuth_Observability(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	logger := &mockLogger{}
	metrics := &mockMetrics{}

	hook, err := UseTokenAuth[struct{}](
		StaticSecret(testSecret),
		WithType(TokenTypeID),
		WithLogger(logger),
		WithTracer(provider.Tracer("test")),
		WithMetrics(metrics),
	)
	require.NoError(t, err)
	endpoint := hook(func(context.Context, exobase.Props) (any, error) { return nil, nil })

	_, err = endpoint(context.Background(), propsWithAuthHeader("Bearer "+mintToken(t, jwt.MapClaims{"type": "id"}, testSecret)))
	require.NoError(t, err)
	_, err = endpoint(context.Background(), propsWithAuthHeader("Bearer "+mintToken(t, jwt.MapClaims{"type": "access"}, testSecret)))
	require.Error(t, err)

	assert.Equal(t, []string{"ok", KeyWrongType}, metrics.results)
	assert.Contains(t, logger.debugCalls, "token authenticated")
	assert.Contains(t, logger.warnCalls, "token claims rejected")

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "tokenauth.Authenticate", spans[0].Name())
	assert.Equal(t, "Error", spans[1].Status().Code.String())
}

func TestNew(t *testing.T) {
	testCases := []struct {
		name    string
		secret  Secret
		options []Option
		wantErr error
	}{
		{name: "nil secret", secret: nil, wantErr: ErrSecretNil},
		{name: "unknown token type", secret: StaticSecret("s"), options: []Option{WithType("refresh")}, wantErr: ErrInvalidTokenType},
		{name: "unknown token type in claim options", secret: StaticSecret("s"), options: []Option{WithClaims(ClaimOptions{Type: "refresh"})}, wantErr: ErrInvalidTokenType},
		{name: "empty issuer", secret: StaticSecret("s"), options: []Option{WithIssuer("")}, wantErr: ErrIssuerEmpty},
		{name: "empty audience", secret: StaticSecret("s"), options: []Option{WithAudience("")}, wantErr: ErrAudienceEmpty},
		{name: "nil validator", secret: StaticSecret("s"), options: []Option{WithValidator(nil)}, wantErr: ErrValidatorNil},
		{name: "nil logger", secret: StaticSecret("s"), options: []Option{WithLogger(nil)}, wantErr: ErrLoggerNil},
		{name: "nil tracer", secret: StaticSecret("s"), options: []Option{WithTracer(nil)}, wantErr: ErrTracerNil},
		{name: "nil metrics", secret: StaticSecret("s"), options: []Option{WithMetrics(nil)}, wantErr: ErrMetricsNil},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			a, err := New[struct{}](testCase.secret, testCase.options...)
			assert.ErrorIs(t, err, testCase.wantErr)
			assert.Nil(t, a)
		})
	}

	t.Run("custom validator", func(t *testing.T) {
		v, err := validator.New(validator.WithAllowedClockSkew(2 * time.Hour))
		require.NoError(t, err)

		a, err := New[struct{}](StaticSecret(testSecret), WithValidator(v))
		require.NoError(t, err)

		expired := mintToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()}, testSecret)
		_, err = a.Authenticate(context.Background(), propsWithAuthHeader("Bearer "+expired))
		assert.NoError(t, err)
	})
}
