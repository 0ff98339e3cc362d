/*
Package exobase provides a function-style handler model and the hooks that
wrap it.

A Handler takes a context and the per-request Props and returns either a
Response or a plain result. A Hook wraps a Handler and returns another one
with the same contract, so cross-cutting concerns compose:

	auth, err := tokenauth.UseTokenAuth[struct{}](tokenauth.StaticSecret(secret))
	if err != nil {
	    log.Fatal(err)
	}

	endpoint := exobase.Compose(
	    cors.UseCors(nil),
	    auth,
	)(func(ctx context.Context, props exobase.Props) (any, error) {
	    return map[string]string{"hello": "world"}, nil
	})

	h, err := exobase.NewHTTPHandler(endpoint)
	if err != nil {
	    log.Fatal(err)
	}
	http.Handle("/hello", h)

# Props

Props are owned by the caller and treated as immutable by hooks. Hooks
derive new values with Props.WithAuth and Props.WithResponse instead of
writing into maps they were handed.

# Errors

Hooks fail with *Error values. Each carries a kind (ErrNotAuthenticated or
ErrNotAuthorized), an HTTP status and a stable key:

	if errors.Is(err, exobase.ErrNotAuthorized) {
	    log.Println("rejected:", exobase.ErrorKey(err))
	}

NewResponse turns a handler's (result, error) pair into the Response the
transport writes. Unknown errors become an opaque 500.

# Transports

NewHTTPHandler serves a Handler over net/http. The framework/gin,
framework/echo and framework/grpc packages adapt the same handlers to those
frameworks.

# Logging

Every component accepts an optional slog-compatible Logger. NewZapLogger and
NewLogrusLogger adapt zap and logrus.
*/
package exobase
