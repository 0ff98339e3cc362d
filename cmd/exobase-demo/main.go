// Command exobase-demo serves a token-protected endpoint behind the CORS and
// tokenauth hooks.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/exobase-go/exobase"
	"github.com/exobase-go/exobase/cors"
	"github.com/exobase-go/exobase/internal/config"
	"github.com/exobase-go/exobase/tokenauth"
)

// HeaderTenantID selects the per-tenant secret when REDIS_ADDR is set.
const HeaderTenantID = "x-tenant-id"

var errMissingTenant = errors.New("missing tenant header")

// Claims are the extra claims the demo reads from its tokens.
type Claims struct {
	Scope string   `json:"scope"`
	Roles []string `json:"roles"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "exobase-demo:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	registry := prometheus.NewRegistry()
	router, err := newRouter(cfg, log, registry)
	if err != nil {
		return fmt.Errorf("building router: %w", err)
	}

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving http: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("shutdown failed", "error", err)
	}
	return nil
}

func newLogger(level string) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	l, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

func newRouter(cfg config.Config, log *zap.SugaredLogger, registry *prometheus.Registry) (http.Handler, error) {
	logger := exobase.NewZapLogger(log)
	metrics := exobase.NewPrometheusMetrics(registry, "exobase")

	opts := []tokenauth.Option{
		tokenauth.WithLogger(logger),
		tokenauth.WithMetrics(metrics),
	}
	if cfg.Token.Type != "" {
		opts = append(opts, tokenauth.WithType(tokenauth.TokenType(cfg.Token.Type)))
	}
	if cfg.Token.Issuer != "" {
		opts = append(opts, tokenauth.WithIssuer(cfg.Token.Issuer))
	}
	if cfg.Token.Audience != "" {
		opts = append(opts, tokenauth.WithAudience(cfg.Token.Audience))
	}

	auth, err := tokenauth.UseTokenAuth[Claims](newSecret(cfg), opts...)
	if err != nil {
		return nil, err
	}

	whoami, err := exobase.NewHTTPHandler(
		exobase.Compose(
			cors.UseCors(cfg.Cors.CorsOverrides(), cors.WithLogger(logger), cors.WithMetrics(metrics)),
			auth,
		)(whoamiEndpoint),
		exobase.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Handle(cfg.MetricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Handle("/whoami", whoami)

	return r, nil
}

func newSecret(cfg config.Config) tokenauth.Secret {
	if cfg.RedisAddr == "" {
		return tokenauth.StaticSecret(cfg.Token.Secret)
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return tokenauth.RedisSecret(client, func(props exobase.Props) (string, error) {
		tenant, ok := props.Request.Header(HeaderTenantID)
		if !ok || tenant == "" {
			return "", errMissingTenant
		}
		return "exobase:secret:" + tenant, nil
	})
}

func whoamiEndpoint(_ context.Context, props exobase.Props) (any, error) {
	token, err := tokenauth.GetToken[Claims](props)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"subject": token.Subject,
		"issuer":  token.Issuer,
		"scope":   token.Extra.Scope,
		"roles":   token.Extra.Roles,
	}, nil
}
