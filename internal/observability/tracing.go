// Package observability adapts the teacher's OpenTelemetry tracing
// wrapper (internal/observability/tracing.go) to Conduit's generate/stream
// call shape: one span per call, tagged with provider, model, and
// (once known) finish reason, instead of the teacher's
// message/tool/database/HTTP span helpers.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps an OpenTelemetry tracer scoped to Conduit's provider
// calls.
type Tracer struct {
	tracer trace.Tracer
}

// TraceConfig configures a Tracer's underlying SDK provider when the
// caller wants one built here rather than supplied externally.
type TraceConfig struct {
	ServiceName  string
	SamplingRate float64 // <= 0 (including the zero value) disables sampling; >= 1.0 samples everything
}

// NewTracer builds a Tracer against a fresh SDK TracerProvider — useful
// when the embedding application hasn't already configured a global
// provider. Returns a shutdown function that must be called on exit.
func NewTracer(cfg TraceConfig) (*Tracer, func(context.Context) error) {
	name := cfg.ServiceName
	if name == "" {
		name = "conduit"
	}

	var sampler sdktrace.Sampler
	switch {
	case cfg.SamplingRate <= 0:
		sampler = sdktrace.NeverSample()
	case cfg.SamplingRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(cfg.SamplingRate)
	}

	provider := sdktrace.NewTracerProvider(sdktrace.WithSampler(sampler))
	otel.SetTracerProvider(provider)

	return &Tracer{tracer: provider.Tracer(name)}, provider.Shutdown
}

// NewTracerFromProvider wraps an already-configured TracerProvider
// (e.g. one the embedding application wires up with its own exporter).
func NewTracerFromProvider(name string, provider trace.TracerProvider) *Tracer {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &Tracer{tracer: provider.Tracer(name)}
}

// StartGenerate opens a client-kind span for one generate call.
func (t *Tracer) StartGenerate(ctx context.Context, provider, model string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, fmt.Sprintf("conduit.generate.%s", provider),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("conduit.provider", provider),
			attribute.String("conduit.model", model),
		),
	)
}

// StartStream opens a client-kind span for one stream call.
func (t *Tracer) StartStream(ctx context.Context, provider, model string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, fmt.Sprintf("conduit.stream.%s", provider),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("conduit.provider", provider),
			attribute.String("conduit.model", model),
		),
	)
}

// RecordFinish tags span with the call's outcome and ends it. err, if
// non-nil, is recorded and the span status set to error; otherwise
// finishReason (e.g. "stop", "maxTokens") is attached.
func (t *Tracer) RecordFinish(span trace.Span, finishReason string, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else if finishReason != "" {
		span.SetAttributes(attribute.String("conduit.finish_reason", finishReason))
	}
	span.End()
}
