package telemetry

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewTracerProviderProducesSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp, tracer, err := NewTracerProvider(
		WithServiceName("noodles-test"),
		WithSpanProcessor(recorder),
	)
	if err != nil {
		t.Fatalf("NewTracerProvider: %v", err)
	}
	defer Shutdown(context.Background(), tp)

	_, span := tracer.Start(context.Background(), "dispatch.invoke")
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d ended spans, want 1", len(spans))
	}
	if spans[0].Name() != "dispatch.invoke" {
		t.Fatalf("span name = %q, want dispatch.invoke", spans[0].Name())
	}
}

var _ sdktrace.SpanProcessor = (*tracetest.SpanRecorder)(nil)
