package tokenauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/exobase-go/exobase"
)

// TokenKey is the props.Auth key the decoded token is stored under.
const TokenKey = "token"

// TokenType is the purpose a token was issued for.
type TokenType string

const (
	TokenTypeID     TokenType = "id"
	TokenTypeAccess TokenType = "access"
)

// Token is a decoded and verified claim set. T receives the full claim set
// decoded from JSON, so it can declare whatever application claims it needs.
type Token[T any] struct {
	Type      string
	Issuer    string
	Audience  []string
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time

	// Extra holds the claims decoded into the caller's type. Claims whose
	// JSON type does not fit a field of T leave that field zero; read
	// them from Raw instead.
	Extra T

	// Raw is every claim as the verifier returned it.
	Raw map[string]any
}

// TokenAuth is the auth data a successful request carries.
type TokenAuth[T any] struct {
	Token Token[T]
}

// GetToken retrieves the token stored by the hook. It fails when no token
// is present or when it was decoded with a different extra claims type.
func GetToken[T any](props exobase.Props) (Token[T], error) {
	val, ok := props.Auth[TokenKey]
	if !ok {
		return Token[T]{}, ErrTokenNotFound
	}

	token, ok := val.(Token[T])
	if !ok {
		return Token[T]{}, fmt.Errorf("token has type %T", val)
	}
	return token, nil
}

// GetTokenAuth is GetToken wrapped in a TokenAuth.
func GetTokenAuth[T any](props exobase.Props) (TokenAuth[T], error) {
	token, err := GetToken[T](props)
	if err != nil {
		return TokenAuth[T]{}, err
	}
	return TokenAuth[T]{Token: token}, nil
}

func decodeToken[T any](claims map[string]any) (Token[T], error) {
	token := Token[T]{
		Type:      stringClaim(claims, "type"),
		Issuer:    stringClaim(claims, "iss"),
		Audience:  audienceClaim(claims),
		Subject:   stringClaim(claims, "sub"),
		ExpiresAt: timeClaim(claims, "exp"),
		IssuedAt:  timeClaim(claims, "iat"),
		Raw:       claims,
	}

	raw, err := json.Marshal(claims)
	if err != nil {
		return Token[T]{}, fmt.Errorf("could not encode claims: %w", err)
	}
	// A claim whose JSON type does not fit T leaves that field zero. The
	// remaining fields are still filled and Raw keeps the original value.
	var typeErr *json.UnmarshalTypeError
	if err := json.Unmarshal(raw, &token.Extra); err != nil && !errors.As(err, &typeErr) {
		return Token[T]{}, fmt.Errorf("could not decode extra claims: %w", err)
	}

	return token, nil
}

func stringClaim(claims map[string]any, name string) string {
	s, _ := claims[name].(string)
	return s
}

// audienceClaim accepts aud as a single string or an array of strings.
func audienceClaim(claims map[string]any) []string {
	switch aud := claims["aud"].(type) {
	case string:
		if aud == "" {
			return nil
		}
		return []string{aud}
	case []any:
		out := make([]string, 0, len(aud))
		for _, v := range aud {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return aud
	}
	return nil
}

func timeClaim(claims map[string]any, name string) time.Time {
	var secs float64
	switch v := claims[name].(type) {
	case float64:
		secs = v
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return time.Time{}
		}
		secs = f
	case int64:
		secs = float64(v)
	default:
		return time.Time{}
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}
