// Package exogin serves exobase handlers and hooks from gin.
package exogin

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/exobase-go/exobase"
)

// PropsKey is the gin context key Middleware stores the props under.
const PropsKey = "exobase.props"

// Handler serves endpoint as a gin route. Route parameters are copied into
// props.Args.
func Handler(endpoint exobase.Handler, opts ...Option) gin.HandlerFunc {
	cfg := newConfig(opts)

	return func(c *gin.Context) {
		props, ok := buildProps(c, cfg)
		if !ok {
			return
		}

		result, err := endpoint(c.Request.Context(), props)
		res := exobase.NewResponse(err, result)
		if err != nil && cfg.logger != nil {
			cfg.logger.Warn("request failed",
				"error", err,
				"key", exobase.ErrorKey(err),
				"path", c.FullPath())
		}
		write(c, cfg, res)
	}
}

// Middleware runs hook in front of the rest of the gin chain. When the hook
// lets the request through, the props it produced are available from
// GetProps and the request context. When it short-circuits or fails, its
// response is written and the chain is aborted.
//
// Post-processing a hook does after its handler returns is not applied to
// responses written by later gin handlers. Use Handler for hooks such as
// cors.UseCors that rewrite the final response.
func Middleware(hook exobase.Hook, opts ...Option) gin.HandlerFunc {
	cfg := newConfig(opts)

	return func(c *gin.Context) {
		props, ok := buildProps(c, cfg)
		if !ok {
			return
		}

		reached := false
		endpoint := hook(func(ctx context.Context, props exobase.Props) (any, error) {
			reached = true
			c.Set(PropsKey, props)
			c.Request = c.Request.WithContext(exobase.SetProps(ctx, props))
			c.Next()
			return nil, nil
		})

		result, err := endpoint(c.Request.Context(), props)
		if reached {
			return
		}

		if cfg.logger != nil {
			cfg.logger.Debug("hook short-circuited request",
				"error", err,
				"path", c.FullPath())
		}
		write(c, cfg, exobase.NewResponse(err, result))
		c.Abort()
	}
}

// GetProps returns the props stored by Middleware.
func GetProps(c *gin.Context) (exobase.Props, error) {
	v, ok := c.Get(PropsKey)
	if !ok {
		return exobase.Props{}, exobase.ErrPropsNotFound
	}
	props, ok := v.(exobase.Props)
	if !ok {
		return exobase.Props{}, exobase.ErrPropsNotFound
	}
	return props, nil
}

func buildProps(c *gin.Context, cfg *config) (exobase.Props, bool) {
	req, err := exobase.RequestFromHTTP(c.Request, cfg.maxBodyBytes)
	if err != nil {
		if cfg.logger != nil {
			cfg.logger.Warn("failed to read request", "error", err)
		}
		status := http.StatusBadRequest
		if errors.Is(err, exobase.ErrBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.AbortWithStatusJSON(status, exobase.ErrorBody{Status: status, Message: http.StatusText(status)})
		return exobase.Props{}, false
	}

	props := exobase.NewProps(req)
	for _, p := range c.Params {
		props.Args[p.Key] = p.Value
	}
	return props, true
}

func write(c *gin.Context, cfg *config, res exobase.Response) {
	if err := exobase.WriteResponse(c.Writer, res); err != nil && cfg.logger != nil {
		cfg.logger.Error("failed to write response", "error", err)
	}
}
