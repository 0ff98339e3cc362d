// Package config loads the demo service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParsingConfig is returned when the environment cannot be parsed into
// a Config.
var ErrParsingConfig = errors.New("failed to parse config")

// Config holds the settings of the demo service.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	MetricsPath     string        `env:"METRICS_PATH" envDefault:"/metrics"`

	Token TokenConfig `envPrefix:"TOKEN_"`
	Cors  CorsConfig  `envPrefix:"CORS_"`

	// RedisAddr switches the token secret to a per-tenant Redis lookup
	// when set.
	RedisAddr string `env:"REDIS_ADDR"`
}

// TokenConfig configures the tokenauth hook.
type TokenConfig struct {
	Secret   string `env:"SECRET"`
	Issuer   string `env:"ISSUER"`
	Audience string `env:"AUDIENCE"`
	Type     string `env:"TYPE"`
}

// CorsConfig overrides the default CORS headers. Empty values keep the
// defaults.
type CorsConfig struct {
	AllowOrigin  string `env:"ALLOW_ORIGIN"`
	AllowMethods string `env:"ALLOW_METHODS"`
	AllowHeaders string `env:"ALLOW_HEADERS"`
}

// Load reads the optional .env files, then parses the environment into a
// Config. Missing .env files are not an error.
func Load(files ...string) (Config, error) {
	// godotenv never overrides variables that are already set.
	_ = godotenv.Load(files...)

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	if c.Token.Secret == "" && c.RedisAddr == "" {
		return fmt.Errorf("%w: TOKEN_SECRET or REDIS_ADDR must be set", ErrParsingConfig)
	}
	switch c.Token.Type {
	case "", "id", "access":
	default:
		return fmt.Errorf("%w: TOKEN_TYPE must be \"id\" or \"access\", got %q", ErrParsingConfig, c.Token.Type)
	}
	return nil
}

// CorsOverrides returns the non-empty CORS settings keyed by header name.
func (c CorsConfig) CorsOverrides() map[string]string {
	overrides := map[string]string{}
	for name, value := range map[string]string{
		"Access-Control-Allow-Origin":  c.AllowOrigin,
		"Access-Control-Allow-Methods": c.AllowMethods,
		"Access-Control-Allow-Headers": c.AllowHeaders,
	} {
		if value != "" {
			overrides[name] = value
		}
	}
	return overrides
}
