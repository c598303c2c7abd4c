package instrumentation

import (
	"fmt"
	"os"
	"strconv"
)

// Supported exporter types.
const (
	// ExporterPrometheus exposes metrics for scraping (default for watch mode).
	ExporterPrometheus = "prometheus"

	// ExporterStdout prints metrics or traces to stdout. Development only.
	ExporterStdout = "stdout"

	// ExporterNone disables the corresponding signal.
	ExporterNone = "none"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	// ServiceName is the name of the service (default: tarefista)
	ServiceName string

	// ServiceVersion is the version of the binary
	ServiceVersion string

	// Enabled determines if instrumentation is active (default: true)
	// Set to false via INSTRUMENTATION_ENABLED=false to disable metrics and tracing
	Enabled bool

	// MetricsExporter specifies the metrics exporter type
	// Options: "prometheus", "stdout", "none" (default: "prometheus")
	MetricsExporter string

	// TracingExporter specifies the tracing exporter type
	// Options: "stdout", "none" (default: "none")
	TracingExporter string

	// DetailedLabels controls whether high-cardinality labels are included.
	// When false (default), only essential labels are recorded. Keep this
	// disabled for long-running watch processes to avoid cardinality growth.
	DetailedLabels bool
}

// DefaultConfig returns a Config with sensible defaults based on environment
// variables.
func DefaultConfig() Config {
	return Config{
		ServiceName:     getEnvOrDefault("OTEL_SERVICE_NAME", "tarefista"),
		ServiceVersion:  "unknown",
		Enabled:         getEnvBoolOrDefault("INSTRUMENTATION_ENABLED", true),
		MetricsExporter: getEnvOrDefault("METRICS_EXPORTER", ExporterPrometheus),
		TracingExporter: getEnvOrDefault("TRACING_EXPORTER", ExporterNone),
		DetailedLabels:  getEnvBoolOrDefault("METRICS_DETAILED_LABELS", false),
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	switch c.MetricsExporter {
	case ExporterPrometheus, ExporterStdout, ExporterNone:
	default:
		return fmt.Errorf("invalid metrics exporter %q (expected %s, %s or %s)",
			c.MetricsExporter, ExporterPrometheus, ExporterStdout, ExporterNone)
	}

	switch c.TracingExporter {
	case ExporterStdout, ExporterNone:
	default:
		return fmt.Errorf("invalid tracing exporter %q (expected %s or %s)",
			c.TracingExporter, ExporterStdout, ExporterNone)
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return parsed
}
