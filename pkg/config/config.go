// Package config loads the inspection service configuration from the
// environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/ZentaChain/zentalk-csp/pkg/inspect/api"
)

// Prefix of every environment variable, e.g. CSP_INSPECT_PORT.
const Prefix = "CSP_INSPECT"

// Config holds the settings of the csp-inspect service
type Config struct {
	Port           int           `envconfig:"PORT" default:"8080"`
	EnableCORS     bool          `envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      int           `envconfig:"RATE_LIMIT" default:"100"` // Requests per minute, 0 disables
	MaxBodySizeKB  int           `envconfig:"MAX_BODY_SIZE_KB" default:"256"`
	ReadTimeout    time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout   time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	FingerprintKey string        `envconfig:"FINGERPRINT_KEY"` // Optional key for log fingerprints
}

// Load reads the configuration. Values from the given env files (or ./.env
// when none are given) are applied first, without overriding variables that
// are already set. A missing ./.env is not an error; a missing explicit file
// is.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate limit %d is negative", c.RateLimit))
	}
	if c.MaxBodySizeKB < 1 {
		errs = append(errs, fmt.Errorf("max body size %dKB must be positive", c.MaxBodySizeKB))
	}
	if len(c.FingerprintKey) > 64 {
		errs = append(errs, fmt.Errorf("fingerprint key is %d bytes, max 64", len(c.FingerprintKey)))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// API converts the configuration into the inspection server's settings
func (c *Config) API() *api.Config {
	var key []byte
	if c.FingerprintKey != "" {
		key = []byte(c.FingerprintKey)
	}
	return &api.Config{
		Port:           c.Port,
		EnableCORS:     c.EnableCORS,
		RateLimit:      c.RateLimit,
		MaxBodySizeKB:  c.MaxBodySizeKB,
		ReadTimeout:    c.ReadTimeout,
		WriteTimeout:   c.WriteTimeout,
		FingerprintKey: key,
	}
}
