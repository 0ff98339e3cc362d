/*
Package validator verifies shared-secret JSON Web Tokens using the
golang-jwt/jwt v5 library.

Verification is a single call that returns either the decoded claim set or a
classified error:

	v, err := validator.New()
	if err != nil {
	    log.Fatal(err)
	}

	claims, err := v.Verify(ctx, rawToken, secret)
	switch {
	case errors.Is(err, validator.ErrTokenExpired):
	    // exp has passed
	case errors.Is(err, validator.ErrTokenInvalid):
	    // bad signature, malformed token, wrong secret, ...
	}

Only HMAC algorithms (HS256, HS384, HS512) are accepted. The validator does
not check iss, aud or any application claim; callers layer those checks on
top of the returned claims.
*/
package validator
