package tokenauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/exobase-go/exobase"
)

// Secret yields the signing secret for one request. The hook calls Resolve
// exactly once per request and does not keep the result.
type Secret interface {
	Resolve(ctx context.Context, props exobase.Props) (string, error)
}

// StaticSecret is a Secret that never changes.
type StaticSecret string

// Resolve returns the secret itself.
func (s StaticSecret) Resolve(context.Context, exobase.Props) (string, error) {
	return string(s), nil
}

// SecretResolverFunc derives the secret from the request, for example to
// pick a per-tenant key.
type SecretResolverFunc func(ctx context.Context, props exobase.Props) (string, error)

// Resolve calls f.
func (f SecretResolverFunc) Resolve(ctx context.Context, props exobase.Props) (string, error) {
	return f(ctx, props)
}

// StringGetter is the subset of a go-redis client RedisSecret needs.
// *redis.Client, *redis.ClusterClient and *redis.Ring satisfy it.
type StringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisSecret returns a resolver that reads the secret stored under the key
// computed from the request. Every request issues one GET; nothing is cached.
func RedisSecret(client StringGetter, key func(props exobase.Props) (string, error)) SecretResolverFunc {
	return func(ctx context.Context, props exobase.Props) (string, error) {
		k, err := key(props)
		if err != nil {
			return "", fmt.Errorf("could not derive secret key: %w", err)
		}

		secret, err := client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("no secret stored under %q", k)
		}
		if err != nil {
			return "", fmt.Errorf("could not read secret %q: %w", k, err)
		}
		return secret, nil
	}
}
