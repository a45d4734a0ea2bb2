package helper

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
)

// MetricsCollectorSpy is a catalog.MetricsCollector that captures all calls for testing.
type MetricsCollectorSpy struct {
	durationRecords []SpyDurationRecord
	counterRecords  []SpyCounterRecord
	valueRecords    []SpyValueRecord
	mu              sync.Mutex
	recordCalls     bool
}

// SpyDurationRecord represents a recorded duration metric call.
type SpyDurationRecord struct {
	Metric   string
	Duration time.Duration
	Labels   map[string]string
}

// SpyCounterRecord represents a recorded counter increment call.
type SpyCounterRecord struct {
	Metric string
	Labels map[string]string
}

// SpyValueRecord represents a recorded value metric call.
type SpyValueRecord struct {
	Metric string
	Value  float64
	Labels map[string]string
}

// NewMetricsCollectorSpy creates a new MetricsCollectorSpy.
// Set recordCalls to true to capture the calls for inspection.
func NewMetricsCollectorSpy(recordCalls bool) *MetricsCollectorSpy {
	return &MetricsCollectorSpy{recordCalls: recordCalls}
}

// RecordDuration implements catalog.MetricsCollector.
func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	if !s.recordCalls {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.durationRecords = append(s.durationRecords, SpyDurationRecord{Metric: metric, Duration: duration, Labels: maps.Clone(labels)})
}

// IncrementCounter implements catalog.MetricsCollector.
func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	if !s.recordCalls {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.counterRecords = append(s.counterRecords, SpyCounterRecord{Metric: metric, Labels: maps.Clone(labels)})
}

// RecordValue implements catalog.MetricsCollector.
func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	if !s.recordCalls {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.valueRecords = append(s.valueRecords, SpyValueRecord{Metric: metric, Value: value, Labels: maps.Clone(labels)})
}

// GetValueRecords returns a copy of all captured value records.
func (s *MetricsCollectorSpy) GetValueRecords() []SpyValueRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyValueRecord(nil), s.valueRecords...)
}

// Reset clears all captured records.
func (s *MetricsCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.durationRecords = nil
	s.counterRecords = nil
	s.valueRecords = nil
}

// CountCounterRecordsForMetric counts the counter increments of metric.
func (s *MetricsCollectorSpy) CountCounterRecordsForMetric(metric string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, record := range s.counterRecords {
		if record.Metric == metric {
			count++
		}
	}

	return count
}

// HasDurationRecordForMetric starts a fluent chain over the duration records of metric.
func (s *MetricsCollectorSpy) HasDurationRecordForMetric(metric string) *MetricRecordMatcher {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := &MetricRecordMatcher{}
	for _, record := range s.durationRecords {
		if record.Metric == metric {
			m.labels = append(m.labels, record.Labels)
		}
	}

	return m
}

// HasCounterRecordForMetric starts a fluent chain over the counter records of metric.
func (s *MetricsCollectorSpy) HasCounterRecordForMetric(metric string) *MetricRecordMatcher {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := &MetricRecordMatcher{}
	for _, record := range s.counterRecords {
		if record.Metric == metric {
			m.labels = append(m.labels, record.Labels)
		}
	}

	return m
}

// HasValueRecordForMetric starts a fluent chain over the value records of metric.
func (s *MetricsCollectorSpy) HasValueRecordForMetric(metric string) *MetricRecordMatcher {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := &MetricRecordMatcher{}
	for _, record := range s.valueRecords {
		if record.Metric == metric {
			m.labels = append(m.labels, record.Labels)
		}
	}

	return m
}

// MetricRecordMatcher narrows down the label sets of the matching records.
type MetricRecordMatcher struct {
	labels []map[string]string
}

// WithLabel keeps the records that have the label key with value.
func (m *MetricRecordMatcher) WithLabel(key, value string) *MetricRecordMatcher {
	var kept []map[string]string
	for _, labels := range m.labels {
		if labels[key] == value {
			kept = append(kept, labels)
		}
	}
	m.labels = kept

	return m
}

func (m *MetricRecordMatcher) WithOperation(operation string) *MetricRecordMatcher {
	return m.WithLabel("operation", operation)
}

func (m *MetricRecordMatcher) WithStatus(status string) *MetricRecordMatcher {
	return m.WithLabel("status", status)
}

func (m *MetricRecordMatcher) WithErrorType(errorType string) *MetricRecordMatcher {
	return m.WithLabel("error_type", errorType)
}

// Assert returns true if at least one record met all conditions of the chain.
func (m *MetricRecordMatcher) Assert() bool {
	return len(m.labels) > 0
}

// ContextualMetricsCollectorSpy adds the context-aware methods, so that callers take the contextual path.
type ContextualMetricsCollectorSpy struct {
	*MetricsCollectorSpy
	contextCalls int
	mu           sync.Mutex
}

// NewContextualMetricsCollectorSpy creates a recording ContextualMetricsCollectorSpy.
func NewContextualMetricsCollectorSpy() *ContextualMetricsCollectorSpy {
	return &ContextualMetricsCollectorSpy{MetricsCollectorSpy: NewMetricsCollectorSpy(true)}
}

func (s *ContextualMetricsCollectorSpy) RecordDurationContext(_ context.Context, metric string, duration time.Duration, labels map[string]string) {
	s.countContextCall()
	s.RecordDuration(metric, duration, labels)
}

func (s *ContextualMetricsCollectorSpy) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	s.countContextCall()
	s.IncrementCounter(metric, labels)
}

func (s *ContextualMetricsCollectorSpy) RecordValueContext(_ context.Context, metric string, value float64, labels map[string]string) {
	s.countContextCall()
	s.RecordValue(metric, value, labels)
}

// ContextCalls returns how often one of the context-aware methods was called.
func (s *ContextualMetricsCollectorSpy) ContextCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.contextCalls
}

func (s *ContextualMetricsCollectorSpy) countContextCall() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contextCalls++
}

var (
	_ catalog.MetricsCollector           = (*MetricsCollectorSpy)(nil)
	_ catalog.ContextualMetricsCollector = (*ContextualMetricsCollectorSpy)(nil)
)
