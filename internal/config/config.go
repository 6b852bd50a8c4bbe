// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the backend.
type Config struct {
	Env       string `env:"APP_ENV"   envDefault:"development"`
	Port      int    `env:"PORT"      envDefault:"8080"`
	AdminPort int    `env:"ADMIN_PORT" envDefault:"9090"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	// ProjectID enables Cloud Trace correlation fields in request logs.
	ProjectID string `env:"GOOGLE_CLOUD_PROJECT"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	MaxBodyBytes       int64    `env:"MAX_BODY_BYTES"       envDefault:"1048576"`

	TLS      TLSConfig
	Timeouts TimeoutConfig
}

// TLSConfig points at the certificate pair used by the public listener.
// Both fields empty means plain HTTP.
type TLSConfig struct {
	CertFile string `env:"TLS_CERT_FILE"`
	KeyFile  string `env:"TLS_KEY_FILE"`
}

// Enabled reports whether the public listener should serve TLS.
func (t TLSConfig) Enabled() bool {
	return t.CertFile != "" && t.KeyFile != ""
}

// TimeoutConfig holds http.Server and shutdown timeouts.
type TimeoutConfig struct {
	Read       time.Duration `env:"READ_TIMEOUT"        envDefault:"5s"`
	ReadHeader time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"2s"`
	Write      time.Duration `env:"WRITE_TIMEOUT"       envDefault:"10s"`
	Idle       time.Duration `env:"IDLE_TIMEOUT"        envDefault:"60s"`
	Shutdown   time.Duration `env:"SHUTDOWN_TIMEOUT"    envDefault:"10s"`
	// DrainDelay keeps both listeners serving after readiness turns 503 so load
	// balancers can observe it before connections are closed.
	DrainDelay time.Duration `env:"DRAIN_DELAY" envDefault:"0s"`
}

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Load reads an optional .env file from the working directory and then parses
// the process environment. Variables already set in the environment win over
// values from the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the current process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the server cannot start with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	// ADMIN_PORT=0 disables the admin listener.
	if c.AdminPort < 0 || c.AdminPort > 65535 {
		return fmt.Errorf("invalid admin port: %d", c.AdminPort)
	}
	if c.AdminPort == c.Port {
		return fmt.Errorf("admin port must differ from port %d", c.Port)
	}
	if _, ok := validLogLevels[c.LogLevel]; !ok {
		return fmt.Errorf("invalid log level: %q", c.LogLevel)
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		return errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if len(c.CORSAllowedOrigins) == 0 {
		return errors.New("at least one CORS origin is required")
	}
	if c.Timeouts.Shutdown <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.Timeouts.Shutdown)
	}
	if c.Timeouts.DrainDelay < 0 {
		return fmt.Errorf("drain delay must not be negative, got %s", c.Timeouts.DrainDelay)
	}
	return nil
}

// Addr returns the public listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// AdminAddr returns the admin listen address, or "" when the admin listener is disabled.
func (c *Config) AdminAddr() string {
	if c.AdminPort == 0 {
		return ""
	}
	return fmt.Sprintf(":%d", c.AdminPort)
}
