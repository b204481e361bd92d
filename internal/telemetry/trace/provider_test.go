package trace

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestBuilderRecordsSpans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()

	tp, closeFn, err := NewTraceProviderBuilder("audio-conversion-test").
		SetVersion("test").
		SetExporter(exp).
		SetSampler(sdktrace.AlwaysSample()).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	_, span := tp.Tracer("test").Start(context.Background(), "Convert")
	span.End()

	if err := closeFn(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	spans := exp.GetSpans()
	if len(spans) != 1 || spans[0].Name != "Convert" {
		t.Fatalf("unexpected spans %+v", spans)
	}

	var found bool
	for _, kv := range spans[0].Resource.Attributes() {
		if string(kv.Key) == "service.name" && kv.Value.AsString() == "audio-conversion-test" {
			found = true
		}
	}
	if !found {
		t.Error("service.name resource attribute missing")
	}
}
