package validator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Signature algorithms accepted for shared-secret tokens.
const (
	HS256 = SignatureAlgorithm("HS256") // HMAC using SHA-256
	HS384 = SignatureAlgorithm("HS384") // HMAC using SHA-384
	HS512 = SignatureAlgorithm("HS512") // HMAC using SHA-512
)

// SignatureAlgorithm is a signature algorithm.
type SignatureAlgorithm string

var allowedSigningAlgorithms = map[SignatureAlgorithm]bool{
	HS256: true,
	HS384: true,
	HS512: true,
}

// Validator verifies shared-secret JWTs. It holds no per-request state and
// is safe for concurrent use.
type Validator struct {
	algorithms       []SignatureAlgorithm
	allowedClockSkew time.Duration
	timeFunc         func() time.Time
}

// New sets up a Validator. Without options it accepts HS256, HS384 and HS512
// and allows no clock skew.
func New(opts ...Option) (*Validator, error) {
	v := &Validator{
		algorithms: []SignatureAlgorithm{HS256, HS384, HS512},
		timeFunc:   time.Now,
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	return v, nil
}

// Verify checks the signature of tokenString against secret, validates the
// time-based claims and returns the decoded claim set.
//
// Errors are *VerificationError values: use errors.Is with ErrTokenExpired
// to tell an expired token apart from any other failure (ErrTokenInvalid).
func (v *Validator) Verify(ctx context.Context, tokenString, secret string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, invalid(err)
	}

	if secret == "" {
		return nil, invalid(errors.New("secret must be provided"))
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods(v.methods()),
		jwt.WithLeeway(v.allowedClockSkew),
		jwt.WithTimeFunc(v.timeFunc),
	)

	claims := jwt.MapClaims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &VerificationError{kind: ErrTokenExpired, details: err}
		}
		return nil, invalid(fmt.Errorf("could not parse the token: %w", err))
	}

	return claims, nil
}

func (v *Validator) methods() []string {
	methods := make([]string, len(v.algorithms))
	for i, alg := range v.algorithms {
		methods[i] = string(alg)
	}
	return methods
}

func invalid(details error) error {
	return &VerificationError{kind: ErrTokenInvalid, details: details}
}
