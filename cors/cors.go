package cors

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/exobase-go/exobase"
)

// Header names the hook sets.
const (
	HeaderAllowOrigin  = "Access-Control-Allow-Origin"
	HeaderAllowMethods = "Access-Control-Allow-Methods"
	HeaderAllowHeaders = "Access-Control-Allow-Headers"
)

const metricName = "cors_preflight_total"

// Headers maps CORS header names to values.
type Headers map[string]string

// DefaultHeaders returns the headers applied when no override is given.
// A fresh map is returned on every call.
func DefaultHeaders() Headers {
	return Headers{
		HeaderAllowOrigin:  "*",
		HeaderAllowMethods: "GET,OPTIONS,PATCH,DELETE,POST,PUT",
		HeaderAllowHeaders: "X-CSRF-Token, X-Requested-With, Authorization, Accept, Accept-Version, Content-Length, Content-MD5, Content-Type, Date, X-Api-Version",
	}
}

// Merge returns the default headers with overrides applied on top.
func Merge(overrides Headers) Headers {
	headers := DefaultHeaders()
	maps.Copy(headers, overrides)
	return headers
}

// WithCors runs one request through the CORS logic.
//
// A preflight (OPTIONS, any case) returns the current props.Response with
// CORS headers merged in and never calls next. Any other request calls next,
// turns its outcome into a Response with exobase.NewResponse and merges the
// CORS headers in last, so they replace same-name headers set by next.
func WithCors(ctx context.Context, next exobase.Handler, overrides Headers, props exobase.Props) exobase.Response {
	return withCors(ctx, next, Merge(overrides), props, &config{metrics: exobase.NoopMetrics{}})
}

func withCors(ctx context.Context, next exobase.Handler, headers Headers, props exobase.Props, c *config) exobase.Response {
	if strings.EqualFold(props.Request.Method, "OPTIONS") {
		if c.logger != nil {
			c.logger.Debug("answering preflight request", "path", props.Request.Path)
		}
		c.metrics.IncCounter(metricName, nil)
		return props.Response.WithHeaders(headers)
	}

	result, err := call(ctx, next, props)
	if err != nil && c.logger != nil {
		c.logger.Debug("handler failed, applying CORS headers to error response", "error", err)
	}
	return exobase.NewResponse(err, result).WithHeaders(headers)
}

// call invokes next, converting a panic into an error so the CORS headers
// still reach the client.
func call(ctx context.Context, next exobase.Handler, props exobase.Props) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("handler panic: %v", r)
		}
	}()
	return next(ctx, props)
}

// UseCors returns a hook applying the default CORS headers with overrides
// on top. A nil overrides map applies the defaults only.
//
// Example:
//
//	endpoint := cors.UseCors(cors.Headers{
//	    cors.HeaderAllowOrigin: "https://app.example.com",
//	})(handler)
func UseCors(overrides Headers, opts ...Option) exobase.Hook {
	c := &config{metrics: exobase.NoopMetrics{}}
	for _, opt := range opts {
		opt(c)
	}

	headers := Merge(overrides)
	return func(next exobase.Handler) exobase.Handler {
		return func(ctx context.Context, props exobase.Props) (any, error) {
			return withCors(ctx, next, headers, props, c), nil
		}
	}
}
