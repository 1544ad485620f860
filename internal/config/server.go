package config

import (
	"fmt"
	"time"

	"github.com/rezkam/central/internal/env"
)

// ServerConfig holds all configuration for the server binary.
type ServerConfig struct {
	Storage         StorageConfig
	HTTP            HTTPConfig
	Planner         PlannerConfig
	Observability   ObservabilityConfig
	ShutdownTimeout time.Duration `env:"CENTRAL_SHUTDOWN_TIMEOUT" default:"10s"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Host              string        `env:"CENTRAL_HTTP_HOST"`
	Port              string        `env:"CENTRAL_HTTP_PORT" default:"8081"`
	ReadTimeout       time.Duration `env:"CENTRAL_HTTP_READ_TIMEOUT" default:"5s"`
	WriteTimeout      time.Duration `env:"CENTRAL_HTTP_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout       time.Duration `env:"CENTRAL_HTTP_IDLE_TIMEOUT" default:"120s"`
	ReadHeaderTimeout time.Duration `env:"CENTRAL_HTTP_READ_HEADER_TIMEOUT" default:"5s"`
	MaxHeaderBytes    int           `env:"CENTRAL_HTTP_MAX_HEADER_BYTES" default:"1048576"`
	MaxBodyBytes      int64         `env:"CENTRAL_HTTP_MAX_BODY_BYTES" default:"1048576"`

	// Per-client rate limit on /v1. Zero RPS disables it.
	RateLimitRPS     float64 `env:"CENTRAL_HTTP_RATE_LIMIT_RPS" default:"0"`
	RateLimitBurst   int     `env:"CENTRAL_HTTP_RATE_LIMIT_BURST" default:"20"`
	RateLimitClients int     `env:"CENTRAL_HTTP_RATE_LIMIT_CLIENTS" default:"10000"`

	// TLS configuration for HTTPS
	TLSEnabled  bool   `env:"CENTRAL_TLS_ENABLED"`
	TLSCertFile string `env:"CENTRAL_TLS_CERT_FILE"`
	TLSKeyFile  string `env:"CENTRAL_TLS_KEY_FILE"`
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 || c.RateLimitClients < 0 {
		return fmt.Errorf("CENTRAL_HTTP_RATE_LIMIT_* values must not be negative")
	}
	if c.TLSEnabled && (c.TLSCertFile == "" || c.TLSKeyFile == "") {
		return fmt.Errorf("CENTRAL_TLS_CERT_FILE and CENTRAL_TLS_KEY_FILE are required when CENTRAL_TLS_ENABLED is true")
	}
	return nil
}

// Addr returns the listen address.
func (c *HTTPConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// LoadServerConfig loads and validates server configuration from environment.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	return cfg, nil
}
