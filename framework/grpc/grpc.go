// Package exogrpc runs exobase hooks as gRPC server interceptors.
//
// The incoming metadata becomes the request headers, so a client sending
// "authorization: Bearer <token>" is authenticated by tokenauth exactly as an
// HTTP client would be:
//
//	auth, err := tokenauth.UseTokenAuth[Claims](tokenauth.StaticSecret(secret))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := grpc.NewServer(
//	    grpc.ChainUnaryInterceptor(exogrpc.UnaryServerInterceptor(auth)),
//	    grpc.ChainStreamInterceptor(exogrpc.StreamServerInterceptor(auth)),
//	)
//
// Handlers read the props through exobase.GetProps(ctx).
package exogrpc

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/exobase-go/exobase"
)

// TrailerErrorKey is the trailer that carries the key of a rejected call.
const TrailerErrorKey = "exobase-error-key"

// ErrHandlerNotCalled is reported when a hook returns without error but
// never calls the gRPC handler.
var ErrHandlerNotCalled = errors.New("hook did not call the handler")

// UnaryServerInterceptor returns an interceptor that runs hook before each
// unary call.
func UnaryServerInterceptor(hook exobase.Hook, opts ...Option) grpc.UnaryServerInterceptor {
	cfg := newConfig(opts)

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if cfg.excluded(info.FullMethod) {
			return handler(ctx, req)
		}

		var (
			reached bool
			resp    any
			callErr error
		)
		endpoint := hook(func(ctx context.Context, props exobase.Props) (any, error) {
			reached = true
			resp, callErr = handler(exobase.SetProps(ctx, props), req)
			return nil, nil
		})

		_, err := endpoint(ctx, exobase.NewProps(RequestFromContext(ctx, info.FullMethod)))
		if reached {
			return resp, callErr
		}
		return nil, cfg.reject(ctx, info.FullMethod, err)
	}
}

// StreamServerInterceptor returns an interceptor that runs hook before each
// streaming call. The stream handed to the handler carries the props in its
// context.
func StreamServerInterceptor(hook exobase.Hook, opts ...Option) grpc.StreamServerInterceptor {
	cfg := newConfig(opts)

	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if cfg.excluded(info.FullMethod) {
			return handler(srv, ss)
		}

		var (
			reached bool
			callErr error
		)
		endpoint := hook(func(ctx context.Context, props exobase.Props) (any, error) {
			reached = true
			callErr = handler(srv, &wrappedServerStream{ServerStream: ss, ctx: exobase.SetProps(ctx, props)})
			return nil, nil
		})

		ctx := ss.Context()
		_, err := endpoint(ctx, exobase.NewProps(RequestFromContext(ctx, info.FullMethod)))
		if reached {
			return callErr
		}
		return cfg.reject(ctx, info.FullMethod, err)
	}
}

// RequestFromContext builds a Request from the incoming metadata and peer of
// ctx. The method is always POST and the path is the full gRPC method name.
func RequestFromContext(ctx context.Context, fullMethod string) exobase.Request {
	req := exobase.Request{
		Method:  "POST",
		Path:    fullMethod,
		Query:   map[string]string{},
		Headers: map[string]string{},
	}

	if md, ok := metadata.FromIncomingContext(ctx); ok {
		for name, values := range md {
			req.Headers[strings.ToLower(name)] = strings.Join(values, ", ")
		}
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		req.IP = p.Addr.String()
		if host, _, err := net.SplitHostPort(req.IP); err == nil {
			req.IP = host
		}
	}

	req.ID = req.Headers[strings.ToLower(exobase.HeaderRequestID)]
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	return req
}

// Status converts a hook error into a gRPC status. Authentication failures map
// to Unauthenticated and authorization failures to PermissionDenied. Any
// other error is Internal with a generic message.
func Status(err error) *status.Status {
	var e *exobase.Error
	switch {
	case err == nil:
		return status.New(codes.Internal, ErrHandlerNotCalled.Error())
	case errors.Is(err, exobase.ErrNotAuthenticated) && errors.As(err, &e):
		return status.New(codes.Unauthenticated, e.Message)
	case errors.Is(err, exobase.ErrNotAuthorized) && errors.As(err, &e):
		return status.New(codes.PermissionDenied, e.Message)
	case errors.As(err, &e):
		return status.New(codes.Internal, e.Message)
	default:
		return status.New(codes.Internal, "Unknown Error")
	}
}

func (c *config) reject(ctx context.Context, method string, err error) error {
	if key := exobase.ErrorKey(err); key != "" {
		// Fails outside a real server transport; the status still goes out.
		_ = grpc.SetTrailer(ctx, metadata.Pairs(TrailerErrorKey, key))
	}
	st := Status(err)
	if c.logger != nil {
		c.logger.Warn("call rejected",
			"method", method,
			"code", st.Code().String(),
			"error", err)
	}
	return st.Err()
}

type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
