// Package exoecho serves exobase handlers and hooks from echo.
package exoecho

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/exobase-go/exobase"
)

// PropsKey is the echo context key Middleware stores the props under.
const PropsKey = "exobase.props"

// Handler serves endpoint as an echo route. Path parameters are copied into
// props.Args.
func Handler(endpoint exobase.Handler, opts ...Option) echo.HandlerFunc {
	cfg := newConfig(opts)

	return func(c echo.Context) error {
		props, err := buildProps(c, cfg)
		if err != nil {
			return err
		}

		result, err := endpoint(c.Request().Context(), props)
		if err != nil && cfg.logger != nil {
			cfg.logger.Warn("request failed",
				"error", err,
				"key", exobase.ErrorKey(err),
				"path", c.Path())
		}
		return exobase.WriteResponse(c.Response(), exobase.NewResponse(err, result))
	}
}

// Middleware runs hook in front of next. When the hook lets the request
// through, the props it produced are available from GetProps and the request
// context, and the error returned by next is passed back to echo untouched.
// When the hook short-circuits or fails, its response is written instead.
//
// As with any echo middleware, response rewrites a hook makes after its
// handler returns are not applied once next has written the response.
func Middleware(hook exobase.Hook, opts ...Option) echo.MiddlewareFunc {
	cfg := newConfig(opts)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			props, err := buildProps(c, cfg)
			if err != nil {
				return err
			}

			reached := false
			var nextErr error
			endpoint := hook(func(ctx context.Context, props exobase.Props) (any, error) {
				reached = true
				c.Set(PropsKey, props)
				c.SetRequest(c.Request().WithContext(exobase.SetProps(ctx, props)))
				nextErr = next(c)
				return nil, nil
			})

			result, err := endpoint(c.Request().Context(), props)
			if reached {
				return nextErr
			}

			if cfg.logger != nil {
				cfg.logger.Debug("hook short-circuited request",
					"error", err,
					"path", c.Path())
			}
			return exobase.WriteResponse(c.Response(), exobase.NewResponse(err, result))
		}
	}
}

// GetProps returns the props stored by Middleware.
func GetProps(c echo.Context) (exobase.Props, error) {
	props, ok := c.Get(PropsKey).(exobase.Props)
	if !ok {
		return exobase.Props{}, exobase.ErrPropsNotFound
	}
	return props, nil
}

func buildProps(c echo.Context, cfg *config) (exobase.Props, error) {
	req, err := exobase.RequestFromHTTP(c.Request(), cfg.maxBodyBytes)
	if err != nil {
		if cfg.logger != nil {
			cfg.logger.Warn("failed to read request", "error", err)
		}
		if errors.Is(err, exobase.ErrBodyTooLarge) {
			return exobase.Props{}, echo.NewHTTPError(http.StatusRequestEntityTooLarge).SetInternal(err)
		}
		return exobase.Props{}, echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
	}

	props := exobase.NewProps(req)
	values := c.ParamValues()
	for i, name := range c.ParamNames() {
		if i < len(values) {
			props.Args[name] = values[i]
		}
	}
	return props, nil
}
