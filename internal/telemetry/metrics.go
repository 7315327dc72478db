package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Upload outcomes recorded on uploads_total
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// UploadMetrics records provider upload counts and payload sizes.
// Instruments come from the global MeterProvider, a no-op until Initialize runs.
type UploadMetrics struct {
	uploads metric.Int64Counter
	bytes   metric.Int64Histogram
}

// NewUploadMetrics creates the upload instruments
func NewUploadMetrics() (*UploadMetrics, error) {
	meter := otel.Meter(TracerName)

	uploads, err := meter.Int64Counter("uploads_total",
		metric.WithDescription("Image uploads forwarded to the provider"),
	)
	if err != nil {
		return nil, err
	}

	bytes, err := meter.Int64Histogram("upload_bytes",
		metric.WithDescription("Size of uploaded images"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &UploadMetrics{uploads: uploads, bytes: bytes}, nil
}

// Record adds one upload attempt
func (m *UploadMetrics) Record(ctx context.Context, provider, outcome string, size int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	)
	m.uploads.Add(ctx, 1, attrs)
	m.bytes.Record(ctx, size, attrs)
}
