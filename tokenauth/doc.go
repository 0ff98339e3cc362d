/*
Package tokenauth provides a hook that enforces bearer-token authentication.

For every request the hook:

 1. reads the authorization header, which must start with "Bearer ",
 2. resolves the signing secret (a StaticSecret or a SecretResolverFunc),
 3. verifies the token with the validator package,
 4. checks the configured claims in the order type, iss, aud,
 5. calls the wrapped handler with the decoded token in props.Auth.

Every failure is an *exobase.Error with a stable key:

	exo.err.jwt.canes-venatici  no authorization header        (401)
	exo.err.jwt.canes-veeticar  header without "Bearer " prefix (401)
	exo.err.jwt.expired         token expired                  (403)
	exo.err.jwt.canis-major     any other verification failure (403)
	exo.err.jwt.caprorilous     wrong type claim               (403)
	exo.err.jwt.caprisaur       wrong iss claim                (403)
	exo.err.jwt.halliphace      wrong aud claim                (403)

Claim checks stop at the first failure.

# Usage

	type UserClaims struct {
	    Email string `json:"email"`
	}

	hook, err := tokenauth.UseTokenAuth[UserClaims](
	    tokenauth.StaticSecret(secret),
	    tokenauth.WithType(tokenauth.TokenTypeAccess),
	)
	if err != nil {
	    log.Fatal(err)
	}

	endpoint := hook(func(ctx context.Context, props exobase.Props) (any, error) {
	    token, err := tokenauth.GetToken[UserClaims](props)
	    if err != nil {
	        return nil, err
	    }
	    return map[string]string{"email": token.Extra.Email}, nil
	})

# Request-derived secrets

	secret := tokenauth.SecretResolverFunc(func(ctx context.Context, props exobase.Props) (string, error) {
	    return secrets.Lookup(ctx, props.Request.Headers["x-tenant-id"])
	})

RedisSecret builds such a resolver on top of a go-redis client.
*/
package tokenauth
