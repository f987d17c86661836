package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string
	LogLevel string

	// OpenTelemetry (traces)
	OTELExporterOTLPEndpoint string
	OTELServiceName          string

	// Task storage: one file per pending task.
	QueueDir        string
	DefaultPriority int

	WorkerAPIURL      string
	WorkerPollDelay   time.Duration
	WorkerLogfile     string
	WorkerMetricsPort int
}

func Load() *Config {
	return &Config{
		Env:      getEnv("ENV", "dev"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", ""),

		QueueDir:        getEnv("QUEUE_DIR", "./data"),
		DefaultPriority: getEnvAsInt("DEFAULT_PRIORITY", 100),

		WorkerAPIURL:      getEnv("WORKER_API_URL", "http://localhost:8080/api"),
		WorkerPollDelay:   getEnvAsDuration("WORKER_POLL_DELAY", 5*time.Second),
		WorkerLogfile:     getEnv("WORKER_LOGFILE", "./worker_log.txt"),
		WorkerMetricsPort: getEnvAsInt("WORKER_METRICS_PORT", 9091),
	}
}

func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT is required")
	}
	if c.QueueDir == "" {
		return fmt.Errorf("QUEUE_DIR is required")
	}
	if c.DefaultPriority < 0 || c.DefaultPriority > 99999999 {
		return fmt.Errorf("DEFAULT_PRIORITY must be 0..99999999")
	}
	if c.WorkerAPIURL == "" {
		return fmt.Errorf("WORKER_API_URL is required")
	}
	if c.WorkerPollDelay <= 0 {
		return fmt.Errorf("WORKER_POLL_DELAY must be > 0")
	}
	if c.WorkerLogfile == "" {
		return fmt.Errorf("WORKER_LOGFILE is required")
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
