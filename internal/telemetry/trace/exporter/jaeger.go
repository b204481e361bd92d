package exporter

import (
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/exporters/jaeger"
)

// NewJaeger returns an exporter posting spans to a Jaeger collector endpoint.
func NewJaeger(endpoint string) (*jaeger.Exporter, error) {
	traceExp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
	if err != nil {
		return nil, errors.Wrap(err, "create jaeger exporter")
	}
	return traceExp, nil
}
