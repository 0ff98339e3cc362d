package validator

import (
	"errors"
	"fmt"
	"time"
)

// Option is how options for the Validator are set up.
// Options return errors to enable validation during construction.
type Option func(*Validator) error

// WithAlgorithms restricts the signature algorithms tokens may use.
func WithAlgorithms(algorithms ...SignatureAlgorithm) Option {
	return func(v *Validator) error {
		if len(algorithms) == 0 {
			return errors.New("algorithms cannot be empty")
		}
		for _, alg := range algorithms {
			if !allowedSigningAlgorithms[alg] {
				return fmt.Errorf("unsupported signature algorithm: %s", alg)
			}
		}
		v.algorithms = algorithms
		return nil
	}
}

// WithAllowedClockSkew sets the tolerance applied to exp, nbf and iat.
// The default is 0 (no clock skew allowed).
func WithAllowedClockSkew(skew time.Duration) Option {
	return func(v *Validator) error {
		if skew < 0 {
			return errors.New("clock skew cannot be negative")
		}
		v.allowedClockSkew = skew
		return nil
	}
}

// WithTimeFunc overrides the clock used for time-based claims.
func WithTimeFunc(f func() time.Time) Option {
	return func(v *Validator) error {
		if f == nil {
			return errors.New("time func cannot be nil")
		}
		v.timeFunc = f
		return nil
	}
}
