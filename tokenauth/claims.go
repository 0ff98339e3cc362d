package tokenauth

import "github.com/exobase-go/exobase"

// ClaimOptions lists the claim constraints to enforce. An empty field means
// no constraint.
type ClaimOptions struct {
	Type     TokenType
	Issuer   string
	Audience string
}

// ValidateClaims checks type, then iss, then aud, and returns the first
// failure only. The audience check reads the aud claim from token.Raw and
// matches only a string equal to opts.Audience.
func ValidateClaims[T any](token Token[T], opts ClaimOptions) error {
	if opts.Type != "" {
		if token.Type == "" || token.Type != string(opts.Type) {
			return exobase.NotAuthorized("Given token does not have required type", KeyWrongType, nil)
		}
	}

	if opts.Issuer != "" {
		if token.Issuer == "" || token.Issuer != opts.Issuer {
			return exobase.NotAuthorized("Given token does not have required issuer", KeyWrongIssuer, nil)
		}
	}

	if opts.Audience != "" {
		// Only a string aud can match; an array never does, even with one element.
		if aud, ok := token.Raw["aud"].(string); !ok || aud != opts.Audience {
			return exobase.NotAuthorized("Given token does not have required audience", KeyWrongAudience, nil)
		}
	}

	return nil
}
