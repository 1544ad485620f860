package config

// ObservabilityConfig holds observability configuration.
type ObservabilityConfig struct {
	OTelEnabled bool   `env:"CENTRAL_OTEL_ENABLED" default:"false"`
	ServiceName string `env:"OTEL_SERVICE_NAME" default:"central"`
	LogLevel    string `env:"CENTRAL_LOG_LEVEL" default:"info"` // debug, info, warn, error
}
