// Package telemetry records validation metrics and traces with OpenTelemetry.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"apimatic-validator-mcp/internal/domain"
)

// ScopeName identifies this module's meter and tracer.
const ScopeName = "apimatic-validator-mcp"

// ValidationObserver records validation outcomes into OpenTelemetry.
type ValidationObserver struct {
	tracer trace.Tracer

	invocations  metric.Int64Counter
	latency      metric.Float64Histogram
	archiveBytes metric.Int64Histogram
}

// NewValidationObserver creates an observer bound to the provided meter/tracer.
func NewValidationObserver(meter metric.Meter, tracer trace.Tracer) (*ValidationObserver, error) {
	invocations, err := meter.Int64Counter(
		"apimatic.validation.invocations",
		metric.WithDescription("Number of validation tool invocations"),
	)
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram(
		"apimatic.validation.latency",
		metric.WithDescription("Validation latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	archiveBytes, err := meter.Int64Histogram(
		"apimatic.validation.archive.size",
		metric.WithDescription("Size of the uploaded archive"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &ValidationObserver{
		tracer:       tracer,
		invocations:  invocations,
		latency:      latency,
		archiveBytes: archiveBytes,
	}, nil
}

// NewGlobalValidationObserver binds an observer to the global providers.
func NewGlobalValidationObserver() (*ValidationObserver, error) {
	return NewValidationObserver(otel.Meter(ScopeName), otel.Tracer(ScopeName))
}

// ObserveValidation records one validation result.
func (o *ValidationObserver) ObserveValidation(ctx context.Context, observation domain.ValidationObservation) {
	if o == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("outcome", string(observation.Outcome)),
		attribute.String("format", observation.Format),
	}
	if observation.StatusCode != 0 {
		attrs = append(attrs, attribute.Int("status_code", observation.StatusCode))
	}

	options := metric.WithAttributes(attrs...)
	o.invocations.Add(ctx, 1, options)
	o.latency.Record(ctx, observation.Duration.Seconds(), options)
	if observation.ArchiveBytes > 0 {
		o.archiveBytes.Record(ctx, int64(observation.ArchiveBytes), metric.WithAttributes(
			attribute.String("format", observation.Format),
		))
	}

	if o.tracer == nil {
		return
	}
	spanAttrs := attrs
	if observation.InvocationID != "" {
		spanAttrs = append(spanAttrs, attribute.String("invocation_id", observation.InvocationID))
	}
	_, span := o.tracer.Start(ctx, "apimatic.validate", trace.WithAttributes(spanAttrs...))
	if observation.Outcome == domain.OutcomeError {
		if observation.Err != nil {
			span.RecordError(observation.Err)
			span.SetStatus(codes.Error, observation.Err.Error())
		} else {
			span.SetStatus(codes.Error, string(observation.Outcome))
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

var _ domain.ValidationObserver = (*ValidationObserver)(nil)
