package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
)

// TracingCollector opens one OpenTelemetry span per store or handler operation.
type TracingCollector struct {
	tracer trace.Tracer
}

func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, catalog.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(toAttributes(attrs)...))

	return spanCtx, &SpanContext{span: span}
}

// FinishSpan ends spans started by this collector and ignores any other catalog.SpanContext.
func (t *TracingCollector) FinishSpan(spanCtx catalog.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(*SpanContext)
	if !ok {
		return
	}

	span.span.SetAttributes(toAttributes(attrs)...)
	span.SetStatus(status)
	span.span.End()
}

var _ catalog.TracingCollector = (*TracingCollector)(nil)

// spanOutcome is the OpenTelemetry status of a status string reported by the stores and handlers.
type spanOutcome struct {
	code        codes.Code
	description string
}

var spanOutcomes = map[string]spanOutcome{
	"ok":                   {code: codes.Ok},
	"success":              {code: codes.Ok},
	"error":                {code: codes.Error, description: "operation failed"},
	"canceled":             {code: codes.Error, description: "operation canceled"},
	"cancelled":            {code: codes.Error, description: "operation canceled"},
	"timeout":              {code: codes.Error, description: "operation timed out"},
	"concurrency_conflict": {code: codes.Error, description: "concurrency conflict"},
}

// SpanContext is the catalog.SpanContext handed out by TracingCollector.
type SpanContext struct {
	span trace.Span
}

// SetStatus sets the span status. A status without a known outcome becomes a "status" attribute.
func (s *SpanContext) SetStatus(status string) {
	outcome, known := spanOutcomes[status]
	if !known {
		s.span.SetAttributes(attribute.String("status", status))
		return
	}

	s.span.SetStatus(outcome.code, outcome.description)
}

func (s *SpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

var _ catalog.SpanContext = (*SpanContext)(nil)

func toAttributes(labels map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for key, value := range labels {
		attrs = append(attrs, attribute.String(key, value))
	}

	return attrs
}
