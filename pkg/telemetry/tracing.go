package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// defaultTracerName is the name of the Tracer NewTracerProvider returns;
// pkg/dispatch receives that Tracer through its constructor.
const defaultTracerName = "noodles"

// TracingConfig configures the server's TracerProvider.
type TracingConfig struct {
	ServiceName string
	TracerName  string

	// SpanProcessors lets a caller attach exporters (otlp, stdout, a test
	// double); with none set, spans are created but never exported,
	// matching an otel.TracerProvider with no registered processor.
	SpanProcessors []sdktrace.SpanProcessor
}

// TracingOption configures a TracingConfig.
type TracingOption func(*TracingConfig)

// WithServiceName sets the resource's service.name attribute.
func WithServiceName(name string) TracingOption {
	return func(c *TracingConfig) { c.ServiceName = name }
}

// WithTracerName overrides the tracer name (default: "noodles").
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) { c.TracerName = name }
}

// WithSpanProcessor attaches an additional span processor (e.g. a batch
// span processor wrapping an OTLP exporter).
func WithSpanProcessor(sp sdktrace.SpanProcessor) TracingOption {
	return func(c *TracingConfig) { c.SpanProcessors = append(c.SpanProcessors, sp) }
}

func defaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "noodles-server",
		TracerName:  defaultTracerName,
	}
}

// NewTracerProvider builds an SDK TracerProvider and registers it as the
// process-global provider, then returns the Tracer the server core uses
// for per-operation spans along the dispatch path.
func NewTracerProvider(opts ...TracingOption) (*sdktrace.TracerProvider, trace.Tracer, error) {
	cfg := defaultTracingConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(cfg.ServiceName),
	))
	if err != nil {
		return nil, nil, err
	}

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	for _, sp := range cfg.SpanProcessors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(sp))
	}

	tp := sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tp)
	return tp, tp.Tracer(cfg.TracerName), nil
}

// Shutdown drains and shuts down a TracerProvider built by
// NewTracerProvider, for use in the server's graceful-shutdown sequence.
func Shutdown(ctx context.Context, tp *sdktrace.TracerProvider) error {
	return tp.Shutdown(ctx)
}
