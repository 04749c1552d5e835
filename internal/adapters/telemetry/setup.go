package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/xs/internal/build"
	"go.trai.ch/xs/internal/core/ports"
)

// Setup returns the loader tracer. With logSpans set, every ended span is logged
// through logger; otherwise spans are dropped. The returned function flushes and
// stops the provider.
func Setup(logger ports.Logger, logSpans bool) (ports.Tracer, func(context.Context) error) {
	if !logSpans {
		return NoOpTracer{}, func(context.Context) error { return nil }
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", "xs"),
		attribute.String("service.version", build.Version),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(NewLogBridge(logger)),
	)
	return NewOTelTracer(tp), tp.Shutdown
}
