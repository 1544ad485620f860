package planner

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/rezkam/central/internal/application/planner"

// Metric names.
const (
	MetricDateParseRequests     = "central.dateparse.requests"
	MetricRecurrenceValidations = "central.recurrence.validations"
	MetricOccurrencesExpanded   = "central.recurrence.occurrences"
	MetricTasksGrouped          = "central.buckets.tasks"
)

const (
	attrMatched    = attribute.Key("matched")
	attrValid      = attribute.Key("valid")
	attrBucket     = attribute.Key("bucket")
	attrRuleID     = attribute.Key("rule.id")
	attrTemplateID = attribute.Key("template.id")
)

type telemetry struct {
	tracer      trace.Tracer
	parses      metric.Int64Counter
	validations metric.Int64Counter
	occurrences metric.Int64Histogram
	grouped     metric.Int64Counter
}

func newTelemetry(mp metric.MeterProvider, tp trace.TracerProvider) (*telemetry, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	meter := mp.Meter(instrumentationName)

	parses, err := meter.Int64Counter(MetricDateParseRequests,
		metric.WithDescription("Free-text date parse requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", MetricDateParseRequests, err)
	}
	validations, err := meter.Int64Counter(MetricRecurrenceValidations,
		metric.WithDescription("Recurrence configurations validated"),
		metric.WithUnit("{config}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", MetricRecurrenceValidations, err)
	}
	occurrences, err := meter.Int64Histogram(MetricOccurrencesExpanded,
		metric.WithDescription("Occurrences returned per expansion"),
		metric.WithUnit("{occurrence}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s histogram: %w", MetricOccurrencesExpanded, err)
	}
	grouped, err := meter.Int64Counter(MetricTasksGrouped,
		metric.WithDescription("Tasks placed into date buckets"),
		metric.WithUnit("{task}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", MetricTasksGrouped, err)
	}

	return &telemetry{
		tracer:      tp.Tracer(instrumentationName),
		parses:      parses,
		validations: validations,
		occurrences: occurrences,
		grouped:     grouped,
	}, nil
}

// startSpan starts a span named after the operation.
func (t *telemetry) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "planner."+op, trace.WithAttributes(attrs...))
}

// endSpan records err on the span, if any, and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
