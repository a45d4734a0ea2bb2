package oteladapters

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
)

// MetricsCollector records catalog metrics on an OpenTelemetry meter and is safe for concurrent use.
// Each metric name gets its instrument on first use: durations go to a histogram in seconds, counters
// to an Int64Counter, and values such as rows per page to a plain histogram.
type MetricsCollector struct {
	durations *instruments[metric.Float64Histogram]
	counters  *instruments[metric.Int64Counter]
	values    *instruments[metric.Float64Histogram]
}

func NewMetricsCollector(meter metric.Meter) *MetricsCollector {
	return &MetricsCollector{
		durations: newInstruments(func(name string) (metric.Float64Histogram, error) {
			return meter.Float64Histogram(name, metric.WithDescription(describe(name, "duration")), metric.WithUnit("s"))
		}),
		counters: newInstruments(func(name string) (metric.Int64Counter, error) {
			return meter.Int64Counter(name, metric.WithDescription(describe(name, "count")))
		}),
		values: newInstruments(func(name string) (metric.Float64Histogram, error) {
			return meter.Float64Histogram(name, metric.WithDescription(describe(name, "distribution")))
		}),
	}
}

func (m *MetricsCollector) RecordDuration(metricName string, duration time.Duration, labels map[string]string) {
	m.RecordDurationContext(context.Background(), metricName, duration, labels)
}

func (m *MetricsCollector) IncrementCounter(metricName string, labels map[string]string) {
	m.IncrementCounterContext(context.Background(), metricName, labels)
}

func (m *MetricsCollector) RecordValue(metricName string, value float64, labels map[string]string) {
	m.RecordValueContext(context.Background(), metricName, value, labels)
}

func (m *MetricsCollector) RecordDurationContext(
	ctx context.Context,
	metricName string,
	duration time.Duration,
	labels map[string]string,
) {
	if histogram, ok := m.durations.get(metricName); ok {
		histogram.Record(ctx, duration.Seconds(), metric.WithAttributes(toAttributes(labels)...))
	}
}

func (m *MetricsCollector) IncrementCounterContext(ctx context.Context, metricName string, labels map[string]string) {
	if counter, ok := m.counters.get(metricName); ok {
		counter.Add(ctx, 1, metric.WithAttributes(toAttributes(labels)...))
	}
}

func (m *MetricsCollector) RecordValueContext(
	ctx context.Context,
	metricName string,
	value float64,
	labels map[string]string,
) {
	if histogram, ok := m.values.get(metricName); ok {
		histogram.Record(ctx, value, metric.WithAttributes(toAttributes(labels)...))
	}
}

// instruments caches one instrument per metric name. A name whose instrument cannot be created is
// retried on the next call and dropped until then.
type instruments[T any] struct {
	mu     sync.Mutex
	byName map[string]T
	create func(name string) (T, error)
}

func newInstruments[T any](create func(name string) (T, error)) *instruments[T] {
	return &instruments[T]{byName: make(map[string]T), create: create}
}

func (i *instruments[T]) get(name string) (T, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if instrument, exists := i.byName[name]; exists {
		return instrument, true
	}

	instrument, err := i.create(name)
	if err != nil {
		var zero T
		return zero, false
	}

	i.byName[name] = instrument

	return instrument, true
}

// describe derives a readable description from a metric name like "bookstore_save_duration_seconds".
func describe(name, kind string) string {
	subject := strings.TrimSuffix(strings.TrimSuffix(name, "_seconds"), "_total")

	return "book catalog " + strings.ReplaceAll(subject, "_", " ") + " (" + kind + ")"
}

var (
	_ catalog.MetricsCollector           = (*MetricsCollector)(nil)
	_ catalog.ContextualMetricsCollector = (*MetricsCollector)(nil)
)
