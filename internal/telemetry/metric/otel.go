package metric

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/global"
)

const meterName = "audio_conversion"

type float64Recorder interface {
	Record(ctx context.Context, value float64, attrs ...attribute.KeyValue)
}

// otelInstruments mirror the duration histograms onto the global
// OpenTelemetry meter. They record nothing until a meter provider is installed.
type otelInstruments struct {
	conversionDuration float64Recorder
	uploadDuration     float64Recorder
}

func newOTelInstruments() (*otelInstruments, error) {
	meter := global.Meter(meterName)

	conversion, err := meter.Float64Histogram("audio_conversion.conversion.duration")
	if err != nil {
		return nil, err
	}
	upload, err := meter.Float64Histogram("audio_conversion.upload.duration")
	if err != nil {
		return nil, err
	}

	return &otelInstruments{conversionDuration: conversion, uploadDuration: upload}, nil
}

func (o *otelInstruments) recordConversion(delivery, outcome string, seconds float64) {
	if o == nil {
		return
	}
	o.conversionDuration.Record(context.Background(), seconds,
		attribute.String("delivery", delivery),
		attribute.String("outcome", outcome),
	)
}

func (o *otelInstruments) recordUpload(backend, outcome string, seconds float64) {
	if o == nil {
		return
	}
	o.uploadDuration.Record(context.Background(), seconds,
		attribute.String("backend", backend),
		attribute.String("outcome", outcome),
	)
}
