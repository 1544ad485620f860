package config

import (
	"fmt"

	"github.com/rezkam/central/internal/env"
)

// TestConfig holds configuration for integration tests against external
// backends. Empty values mean the matching tests are skipped.
type TestConfig struct {
	PostgresDSN string `env:"CENTRAL_TEST_DB_DSN"`
	GCSBucket   string `env:"CENTRAL_TEST_GCS_BUCKET"`
}

// LoadTestConfig loads test configuration from environment.
func LoadTestConfig() (*TestConfig, error) {
	cfg := &TestConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load test config: %w", err)
	}

	return cfg, nil
}
