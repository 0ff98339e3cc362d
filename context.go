package exobase

import (
	"context"
	"errors"
)

// ErrPropsNotFound is returned when no props are stored in the context.
var ErrPropsNotFound = errors.New("props not found in context")

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	propsKey contextKey = iota
)

// SetProps stores props in the context. Transport adapters use it to hand
// the props a hook chain produced to framework-native handlers.
func SetProps(ctx context.Context, props Props) context.Context {
	return context.WithValue(ctx, propsKey, props)
}

// GetProps retrieves the props stored by SetProps.
func GetProps(ctx context.Context) (Props, error) {
	props, ok := ctx.Value(propsKey).(Props)
	if !ok {
		return Props{}, ErrPropsNotFound
	}
	return props, nil
}

// HasProps reports whether props exist in the context.
func HasProps(ctx context.Context) bool {
	_, ok := ctx.Value(propsKey).(Props)
	return ok
}
