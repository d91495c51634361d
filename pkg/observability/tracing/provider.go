package tracing

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config holds tracing exporter configuration
type Config struct {
	Exporter    string    // "stdout" or "zipkin"
	ZipkinURL   string    // collector endpoint for the zipkin exporter
	ServiceName string    // service.name resource attribute
	Writer      io.Writer // stdout exporter destination, os.Stdout if nil
}

// ShutdownFunc flushes and stops a provider
type ShutdownFunc func(ctx context.Context) error

// NewProvider builds a batching TracerProvider for the configured exporter
func NewProvider(ctx context.Context, cfg Config) (*sdktrace.TracerProvider, ShutdownFunc, error) {
	exporter, err := newExporter(cfg)
	if err != nil {
		return nil, nil, err
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "threadpool"
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		_ = exporter.Shutdown(ctx)
		return nil, nil, fmt.Errorf("tracing resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	return tp, tp.Shutdown, nil
}

func newExporter(cfg Config) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(cfg.Exporter) {
	case "", "stdout":
		w := cfg.Writer
		if w == nil {
			w = os.Stdout
		}
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("stdout exporter: %w", err)
		}
		return exp, nil
	case "zipkin":
		if cfg.ZipkinURL == "" {
			return nil, fmt.Errorf("zipkin exporter: collector URL is required")
		}
		exp, err := zipkin.New(cfg.ZipkinURL)
		if err != nil {
			return nil, fmt.Errorf("zipkin exporter: %w", err)
		}
		return exp, nil
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.Exporter)
	}
}
