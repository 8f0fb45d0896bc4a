package tracing

import "os"

// Config holds the tracing configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	OTLPExporterEndpoint string
}

// NewConfig creates a tracing configuration from environment variables.
func NewConfig() *Config {
	return &Config{
		ServiceName:          getEnv("OTEL_SERVICE_NAME", "notify"),
		ServiceVersion:       getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
		Environment:          getEnv("ENVIRONMENT", "development"),
		OTLPExporterEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
