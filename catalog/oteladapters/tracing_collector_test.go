package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/book-catalog-go/catalog/oteladapters"
)

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	// arrange
	exporter, collector := newTracingCollector()

	// act
	_, spanCtx := collector.StartSpan(context.Background(), "bookstore.save", map[string]string{
		"operation": "save",
		"book_id":   "42",
	})
	spanCtx.AddAttribute("duration_ms", "1.25")
	collector.FinishSpan(spanCtx, "success", map[string]string{"events_dispatched": "2"})

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, "bookstore.save", span.Name)
	assert.Equal(t, codes.Ok, span.Status.Code)
	assertSpanHasAttribute(t, span, "operation", "save")
	assertSpanHasAttribute(t, span, "book_id", "42")
	assertSpanHasAttribute(t, span, "duration_ms", "1.25")
	assertSpanHasAttribute(t, span, "events_dispatched", "2")
}

func Test_TracingCollector_StatusMapping(t *testing.T) {
	testCases := []struct {
		status              string
		expectedCode        codes.Code
		expectedDescription string
	}{
		{status: "success", expectedCode: codes.Ok},
		{status: "ok", expectedCode: codes.Ok},
		{status: "error", expectedCode: codes.Error, expectedDescription: "operation failed"},
		{status: "canceled", expectedCode: codes.Error, expectedDescription: "operation canceled"},
		{status: "cancelled", expectedCode: codes.Error, expectedDescription: "operation canceled"},
		{status: "timeout", expectedCode: codes.Error, expectedDescription: "operation timed out"},
		{status: "concurrency_conflict", expectedCode: codes.Error, expectedDescription: "concurrency conflict"},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			exporter, collector := newTracingCollector()

			_, spanCtx := collector.StartSpan(context.Background(), "op", nil)
			collector.FinishSpan(spanCtx, tc.status, nil)

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.expectedCode, spans[0].Status.Code)
			assert.Equal(t, tc.expectedDescription, spans[0].Status.Description)
		})
	}
}

func Test_TracingCollector_KeepsUnknownStatusAsAttribute(t *testing.T) {
	exporter, collector := newTracingCollector()

	_, spanCtx := collector.StartSpan(context.Background(), "op", nil)
	collector.FinishSpan(spanCtx, "partially_applied", nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
	assertSpanHasAttribute(t, spans[0], "status", "partially_applied")
}

func Test_TracingCollector_StartsChildOfSpanInContext(t *testing.T) {
	exporter, collector := newTracingCollector()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)).Tracer("parent")

	parentCtx, parent := tracer.Start(context.Background(), "command.add_review")
	childCtx, spanCtx := collector.StartSpan(parentCtx, "bookstore.save", nil)
	collector.FinishSpan(spanCtx, "success", nil)
	parent.End()

	assert.Equal(t, parent.SpanContext().TraceID(), trace.SpanFromContext(childCtx).SpanContext().TraceID())

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, parent.SpanContext().SpanID(), spans[0].Parent.SpanID())
}

func Test_TracingCollector_IgnoresForeignSpanContext(t *testing.T) {
	exporter, collector := newTracingCollector()

	assert.NotPanics(t, func() {
		collector.FinishSpan(foreignSpanContext{}, "success", map[string]string{"k": "v"})
		collector.FinishSpan(nil, "success", nil)
	})
	assert.Empty(t, exporter.GetSpans())
}

type foreignSpanContext struct{}

func (foreignSpanContext) SetStatus(string)            {}
func (foreignSpanContext) AddAttribute(string, string) {}

func newTracingCollector() (*tracetest.InMemoryExporter, *oteladapters.TracingCollector) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return exporter, oteladapters.NewTracingCollector(provider.Tracer("test"))
}

func assertSpanHasAttribute(t *testing.T, span tracetest.SpanStub, key, expectedValue string) {
	t.Helper()

	for _, attr := range span.Attributes {
		if attr.Key == attribute.Key(key) {
			assert.Equal(t, expectedValue, attr.Value.AsString(), "attribute %s", key)
			return
		}
	}

	t.Errorf("span %q has no attribute %q", span.Name, key)
}
