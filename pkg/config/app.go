package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// EnvPrefix is the environment prefix used by LoadApp
const EnvPrefix = "THREADPOOL"

// App is the configuration of the threadpool process
type App struct {
	Pool    PoolConfig    `yaml:"pool" json:"pool"`
	Log     LogConfig     `yaml:"log" json:"log"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
	Tracing TracingConfig `yaml:"tracing" json:"tracing"`
	NATS    NATSConfig    `yaml:"nats" json:"nats"`
}

// PoolConfig sizes the worker pool
type PoolConfig struct {
	Name            string        `yaml:"name" json:"name"`
	Workers         int           `yaml:"workers" json:"workers"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// LogConfig selects the log level
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Address string `yaml:"address" json:"address"`
	Path    string `yaml:"path" json:"path"`
}

// TracingConfig controls OpenTelemetry export
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	Exporter    string `yaml:"exporter" json:"exporter"` // stdout | zipkin
	ZipkinURL   string `yaml:"zipkin_url" json:"zipkin_url"`
	ServiceName string `yaml:"service_name" json:"service_name"`
}

// NATSConfig controls the digest request subscriber
type NATSConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	URL        string `yaml:"url" json:"url"`
	Subject    string `yaml:"subject" json:"subject"`
	QueueGroup string `yaml:"queue_group" json:"queue_group"`
}

// DefaultApp returns the configuration used when no file is given
func DefaultApp() App {
	return App{
		Pool: PoolConfig{
			Name:            "default",
			Workers:         runtime.NumCPU(),
			ShutdownTimeout: 30 * time.Second,
		},
		Log: LogConfig{Level: "info"},
		Metrics: MetricsConfig{
			Enabled: true,
			Address: ":9090",
			Path:    "/metrics",
		},
		Tracing: TracingConfig{
			Exporter:    "stdout",
			ServiceName: "threadpool",
		},
		NATS: NATSConfig{
			URL:        "nats://127.0.0.1:4222",
			Subject:    "threadpool.digest",
			QueueGroup: "threadpool",
		},
	}
}

// LoadApp starts from DefaultApp, overlays the file at path (if any) and then
// THREADPOOL_* environment variables, and validates the result.
func LoadApp(path string) (App, error) {
	cfg := DefaultApp()

	if path != "" {
		if err := LoadWithEnv(path, EnvPrefix, &cfg); err != nil {
			return App{}, err
		}
	} else if err := ApplyEnvOverrides(EnvPrefix, &cfg); err != nil {
		return App{}, fmt.Errorf("failed to apply env overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return App{}, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the process cannot start with
func (a *App) Validate() error {
	enabled := func(flag func(*App) bool) func(interface{}) bool {
		return func(c interface{}) bool { return flag(c.(*App)) }
	}

	return Validate(a,
		StringLengthValidator("Pool.Name", 1, 64),
		RangeValidator("Pool.Workers", 1, 4096),
		RangeValidator("Pool.ShutdownTimeout", float64(time.Millisecond), float64(24*time.Hour)),
		OneOfValidator("Log.Level", "debug", "info", "warn", "warning", "error"),
		When(enabled(func(c *App) bool { return c.Metrics.Enabled }),
			RequiredFields("Metrics.Address", "Metrics.Path")),
		When(enabled(func(c *App) bool { return c.Tracing.Enabled }),
			OneOfValidator("Tracing.Exporter", "stdout", "zipkin")),
		When(enabled(func(c *App) bool { return c.Tracing.Enabled && strings.EqualFold(c.Tracing.Exporter, "zipkin") }),
			RequiredFields("Tracing.ZipkinURL")),
		When(enabled(func(c *App) bool { return c.NATS.Enabled }),
			RequiredFields("NATS.URL", "NATS.Subject")),
	)
}
