package exobase

import (
	"context"
	"maps"
)

// Request is the transport-independent view of an inbound request.
// Header keys are lower-cased by the transport adapters.
type Request struct {
	ID      string
	Method  string
	Path    string
	Query   map[string]string
	Headers map[string]string
	Body    []byte
	IP      string
}

// Response is the value a handler chain produces for the transport to write.
type Response struct {
	Status  int
	Headers map[string]string
	Body    any
}

// Props is the per-request value threaded through a handler chain.
//
// Props is treated as immutable by hooks. Use the With* helpers to derive a
// new value instead of assigning into the maps of a value you were given.
type Props struct {
	Request  Request
	Response Response
	Auth     map[string]any
	Args     map[string]any
	Services map[string]any
}

// Handler is the function-style endpoint every hook wraps.
// The result is either a Response or a body for a default 200 response.
type Handler func(ctx context.Context, props Props) (any, error)

// Hook wraps a Handler, returning a Handler with the same contract.
type Hook func(next Handler) Handler

// NewProps returns Props for the given request with an empty 200 response.
func NewProps(req Request) Props {
	return Props{
		Request:  req,
		Response: DefaultResponse(),
		Auth:     map[string]any{},
		Args:     map[string]any{},
		Services: map[string]any{},
	}
}

// DefaultResponse is the response a chain starts out with.
func DefaultResponse() Response {
	return Response{
		Status:  200,
		Headers: map[string]string{},
		Body:    map[string]any{},
	}
}

// WithAuth returns a copy of p whose Auth holds value under key.
// Existing Auth entries are preserved unless key collides.
func (p Props) WithAuth(key string, value any) Props {
	auth := make(map[string]any, len(p.Auth)+1)
	maps.Copy(auth, p.Auth)
	auth[key] = value
	p.Auth = auth
	return p
}

// WithResponse returns a copy of p carrying r as its current response.
func (p Props) WithResponse(r Response) Props {
	p.Response = r
	return p
}

// Header returns the request header stored under the lower-case name.
func (r Request) Header(name string) (string, bool) {
	v, ok := r.Headers[name]
	return v, ok
}

// WithHeaders returns a copy of r with headers merged over its own.
// Keys in headers win on collision.
func (r Response) WithHeaders(headers map[string]string) Response {
	merged := make(map[string]string, len(r.Headers)+len(headers))
	maps.Copy(merged, r.Headers)
	maps.Copy(merged, headers)
	r.Headers = merged
	return r
}

// Compose chains hooks so that the first hook is the outermost.
//
//	endpoint := exobase.Compose(
//	    cors.UseCors(nil),
//	    auth,
//	)(handler)
func Compose(hooks ...Hook) Hook {
	return func(next Handler) Handler {
		for i := len(hooks) - 1; i >= 0; i-- {
			next = hooks[i](next)
		}
		return next
	}
}
