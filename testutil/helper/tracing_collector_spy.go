package helper

import (
	"context"
	"maps"
	"sync"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
)

// SpySpanContext records what the code under test set on a span.
type SpySpanContext struct {
	status     string
	attributes map[string]string
	mu         sync.Mutex
}

// SetStatus implements catalog.SpanContext.
func (c *SpySpanContext) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}

// AddAttribute implements catalog.SpanContext.
func (c *SpySpanContext) AddAttribute(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attributes == nil {
		c.attributes = make(map[string]string)
	}
	c.attributes[key] = value
}

// GetStatus returns the last status set on the span.
func (c *SpySpanContext) GetStatus() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.status
}

// GetAttributes returns a copy of the attributes added to the span.
func (c *SpySpanContext) GetAttributes() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return maps.Clone(c.attributes)
}

// SpySpanRecord represents one started span. Status and EndAttributes are set when it was finished.
type SpySpanRecord struct {
	Name            string
	StartAttributes map[string]string
	Status          string
	EndAttributes   map[string]string
	Finished        bool
	SpanContext     *SpySpanContext
}

// TracingCollectorSpy is a catalog.TracingCollector that captures all spans for testing.
type TracingCollectorSpy struct {
	spanRecords []SpySpanRecord
	mu          sync.Mutex
	recordCalls bool
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy.
// Set recordCalls to true to capture the spans; otherwise StartSpan returns no span.
func NewTracingCollectorSpy(recordCalls bool) *TracingCollectorSpy {
	return &TracingCollectorSpy{recordCalls: recordCalls}
}

// StartSpan implements catalog.TracingCollector.
func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, catalog.SpanContext) {
	if !s.recordCalls {
		return ctx, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	spanCtx := &SpySpanContext{}
	s.spanRecords = append(s.spanRecords, SpySpanRecord{
		Name:            name,
		StartAttributes: maps.Clone(attrs),
		SpanContext:     spanCtx,
	})

	return ctx, spanCtx
}

// FinishSpan implements catalog.TracingCollector.
func (s *TracingCollectorSpy) FinishSpan(spanCtx catalog.SpanContext, status string, attrs map[string]string) {
	spyCtx, ok := spanCtx.(*SpySpanContext)
	if !s.recordCalls || !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.spanRecords {
		if s.spanRecords[i].SpanContext == spyCtx {
			s.spanRecords[i].Status = status
			s.spanRecords[i].EndAttributes = maps.Clone(attrs)
			s.spanRecords[i].Finished = true

			return
		}
	}
}

// GetSpanRecords returns a copy of all captured spans.
func (s *TracingCollectorSpy) GetSpanRecords() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpySpanRecord(nil), s.spanRecords...)
}

// GetSpanRecordsByName returns the captured spans with name.
func (s *TracingCollectorSpy) GetSpanRecordsByName(name string) []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []SpySpanRecord
	for _, record := range s.spanRecords {
		if record.Name == name {
			records = append(records, record)
		}
	}

	return records
}

// HasSpan tells whether a span with name was finished with status.
func (s *TracingCollectorSpy) HasSpan(name string, status string) bool {
	for _, record := range s.GetSpanRecordsByName(name) {
		if record.Finished && record.Status == status {
			return true
		}
	}

	return false
}

var _ catalog.TracingCollector = (*TracingCollectorSpy)(nil)
