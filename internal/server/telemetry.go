package server

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"audio_conversion/config"
	ttrace "audio_conversion/internal/telemetry/trace"
	"audio_conversion/internal/telemetry/trace/exporter"
)

// InitGlobalProvider installs the global tracer provider for the configured
// exporter. With exporter "none" spans are recorded but never exported.
func (s *Server) InitGlobalProvider(ctx context.Context, cfg *config.Config) error {
	var (
		exp sdktrace.SpanExporter
		err error
	)

	switch cfg.OTEL.Exporter {
	case "jaeger":
		exp, err = exporter.NewJaeger(cfg.OTEL.JaegerEndpoint)
	case "otlp":
		exp, err = exporter.NewOTLP(ctx, cfg.OTEL.OTLPEndpoint)
	case "none", "":
		return nil
	default:
		err = errors.Errorf("unknown exporter %q", cfg.OTEL.Exporter)
	}
	if err != nil {
		return err
	}

	tp, closeFn, err := ttrace.NewTraceProviderBuilder(cfg.App.Name).
		SetVersion(cfg.App.Version).
		SetExporter(exp).
		Build()
	if err != nil {
		return errors.Wrap(err, "build trace provider")
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	s.traceProviderCloseFn = append(s.traceProviderCloseFn, closeFn)

	return nil
}
