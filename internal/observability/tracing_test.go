package observability

import (
	"context"
	"errors"
	"testing"
)

func TestNewTracerBuildsUsableTracer(t *testing.T) {
	t.Parallel()

	tracer, shutdown := NewTracer(TraceConfig{ServiceName: "conduit-test", SamplingRate: 1.0})
	defer shutdown(context.Background())

	if tracer == nil || tracer.tracer == nil {
		t.Fatal("NewTracer returned a tracer with a nil underlying trace.Tracer")
	}
}

func TestStartGenerateReturnsValidSpan(t *testing.T) {
	t.Parallel()

	tracer, shutdown := NewTracer(TraceConfig{ServiceName: "conduit-test", SamplingRate: 1.0})
	defer shutdown(context.Background())

	ctx, span := tracer.StartGenerate(context.Background(), "anthropic", "claude-3-5-sonnet-20241022")
	if ctx == nil {
		t.Fatal("StartGenerate returned a nil context")
	}
	tracer.RecordFinish(span, "stop", nil)
}

func TestRecordFinishRecordsError(t *testing.T) {
	t.Parallel()

	tracer, shutdown := NewTracer(TraceConfig{ServiceName: "conduit-test", SamplingRate: 1.0})
	defer shutdown(context.Background())

	_, span := tracer.StartStream(context.Background(), "openai", "gpt-4o")
	tracer.RecordFinish(span, "", errors.New("boom"))
}

func TestNewTracerWithZeroSamplingStillBuildsTracer(t *testing.T) {
	t.Parallel()

	tracer, shutdown := NewTracer(TraceConfig{ServiceName: "conduit-test"})
	defer shutdown(context.Background())

	if tracer == nil {
		t.Fatal("NewTracer returned nil even with no sampling configured")
	}
}
