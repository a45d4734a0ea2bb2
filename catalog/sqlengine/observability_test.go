package sqlengine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
	"github.com/AntonStoeckl/book-catalog-go/catalog/listing"
	"github.com/AntonStoeckl/book-catalog-go/catalog/sqlengine"
	. "github.com/AntonStoeckl/book-catalog-go/testutil/helper" //nolint:revive
)

func Test_Observability_WithLogger_LogsSQL_And_Operations(t *testing.T) {
	// setup
	ctx := context.Background()
	logger, logSpy := NewLoggerSpy()
	store := NewSQLiteStore(t, sqlengine.WithLogger(logger))

	// act
	book := GivenPersistedBook(t, store, NewBookFixture("Observed").WithReviews(5))
	_, err := store.Load(ctx, book.ID(), sqlengine.IncludeReviews)
	require.NoError(t, err)

	// assert
	assert.True(t, logSpy.HasDebugLogWithMessage("executed sql for: save").WithDurationMS().Assert(),
		"should log the SQL of the unit of work")
	assert.True(t, logSpy.HasDebugLogWithMessage("executed sql for: load").WithDurationMS().Assert(),
		"should log the SQL of the load")
	assert.True(t,
		logSpy.HasInfoLogWithMessage("bookstore operation: book saved").
			WithDurationMS().
			WithAttribute("events_dispatched", "1").
			WithAttribute("reviews_added", "1").
			WithAttribute("inserted", "true").
			WithKey("unit_of_work_id").
			Assert(), "should log the unit of work summary",
	)
	assert.True(t,
		logSpy.HasInfoLogWithMessage("bookstore operation: book loaded").
			WithAttribute("includes", "reviews").
			WithAttribute("consistency", "strong").
			Assert(), "should log the load",
	)
}

func Test_Observability_WithContextualLogger_IsPreferred(t *testing.T) {
	// setup
	plainLogger, plainSpy := NewLoggerSpy()
	contextualLogger, contextualSpy := NewLoggerSpy()
	store := NewSQLiteStore(t, sqlengine.WithLogger(plainLogger), sqlengine.WithContextualLogger(contextualLogger))

	// act
	GivenPersistedBook(t, store, NewBookFixture("Observed"))

	// assert
	assert.True(t, contextualSpy.HasInfoLogWithMessage("bookstore operation: book saved").Assert())
	assert.Empty(t, plainSpy.GetRecords(), "the plain logger is only a fallback")
}

func Test_Observability_WithLogger_LogsConcurrencyConflicts(t *testing.T) {
	// setup
	ctx := context.Background()
	logger, logSpy := NewLoggerSpy()
	metricsSpy := NewMetricsCollectorSpy(true)
	store := NewSQLiteStore(t, sqlengine.WithLogger(logger), sqlengine.WithMetrics(metricsSpy))

	// arrange
	persisted := GivenPersistedBook(t, store, NewBookFixture("Contended"))
	first, err := store.Load(ctx, persisted.ID(), sqlengine.IncludeReviews)
	require.NoError(t, err)
	second, err := store.Load(ctx, persisted.ID(), sqlengine.IncludeReviews)
	require.NoError(t, err)
	require.NoError(t, first.AddReview(5, "", ""))
	require.NoError(t, store.Save(ctx, first))

	// act
	require.NoError(t, second.AddReview(4, "", ""))
	err = store.Save(ctx, second)

	// assert
	require.ErrorIs(t, err, catalog.ErrConcurrencyConflict)
	assert.True(t, logSpy.HasInfoLogWithMessage("bookstore operation: concurrency conflict detected").
		WithKey("unit_of_work_id").
		Assert())
	assert.Equal(t, 1, metricsSpy.CountCounterRecordsForMetric("bookstore_concurrency_conflicts_total"))
	assert.True(t, metricsSpy.HasDurationRecordForMetric("bookstore_save_duration_seconds").
		WithOperation("save").
		WithStatus("error").
		Assert())
}

func Test_Observability_WithMetrics_RecordsOperationMetrics(t *testing.T) {
	// setup
	ctx := context.Background()
	metricsSpy := NewMetricsCollectorSpy(true)
	store := NewSQLiteStore(t, sqlengine.WithMetrics(metricsSpy))

	// act
	book := GivenPersistedBook(t, store, NewBookFixture("Measured").WithReviews(3, 4))
	_, err := store.Load(ctx, book.ID())
	require.NoError(t, err)
	_, err = store.Fetch(ctx, listing.BuildListQuery().Unfiltered().OrderedBy(listing.SimpleOrder).Page(1, 10))
	require.NoError(t, err)
	_, err = store.Load(ctx, 4711)
	require.ErrorIs(t, err, catalog.ErrBookNotFound)

	// assert
	assert.True(t, metricsSpy.HasDurationRecordForMetric("bookstore_save_duration_seconds").
		WithOperation("save").WithStatus("success").Assert())
	assert.True(t, metricsSpy.HasDurationRecordForMetric("bookstore_load_duration_seconds").
		WithOperation("load").WithStatus("success").Assert())
	assert.True(t, metricsSpy.HasDurationRecordForMetric("bookstore_fetch_duration_seconds").
		WithOperation("fetch").WithStatus("success").Assert())
	assert.True(t, metricsSpy.HasDurationRecordForMetric("bookstore_load_duration_seconds").
		WithStatus("error").Assert())
	assert.True(t, metricsSpy.HasCounterRecordForMetric("bookstore_database_errors_total").
		WithErrorType("not_found").Assert())
	assert.True(t, metricsSpy.HasValueRecordForMetric("bookstore_events_dispatched").Assert())
	assert.True(t, metricsSpy.HasValueRecordForMetric("bookstore_rows_fetched").WithOperation("fetch").Assert())

	for _, record := range metricsSpy.GetValueRecords() {
		switch record.Metric {
		case "bookstore_events_dispatched":
			assert.InDelta(t, 2.0, record.Value, 0)
		case "bookstore_rows_fetched":
			assert.InDelta(t, 1.0, record.Value, 0)
		}
	}
}

func Test_Observability_WithContextualMetrics_UsesTheContextMethods(t *testing.T) {
	// setup
	metricsSpy := NewContextualMetricsCollectorSpy()
	store := NewSQLiteStore(t, sqlengine.WithMetrics(metricsSpy))

	// act
	GivenPersistedBook(t, store, NewBookFixture("Measured"))

	// assert
	assert.Positive(t, metricsSpy.ContextCalls())
	assert.True(t, metricsSpy.HasDurationRecordForMetric("bookstore_save_duration_seconds").WithStatus("success").Assert())
}

func Test_Observability_WithTracing_RecordsSpans(t *testing.T) {
	// setup
	ctx := context.Background()
	tracingSpy := NewTracingCollectorSpy(true)
	store := NewSQLiteStore(t, sqlengine.WithTracing(tracingSpy))

	// act
	book := GivenPersistedBook(t, store, NewBookFixture("Traced").WithReviews(5))
	_, err := store.Load(ctx, book.ID())
	require.NoError(t, err)
	_, err = store.Fetch(ctx, listing.BuildListQuery().Unfiltered().OrderedBy(listing.OrderByVotes).Page(1, 10))
	require.NoError(t, err)
	_, err = store.Load(ctx, 4711)
	require.Error(t, err)

	// assert
	assert.True(t, tracingSpy.HasSpan("bookstore.save", "success"))
	assert.True(t, tracingSpy.HasSpan("bookstore.load", "success"))
	assert.True(t, tracingSpy.HasSpan("bookstore.fetch", "success"))
	assert.True(t, tracingSpy.HasSpan("bookstore.load", "error"))

	saveSpans := tracingSpy.GetSpanRecordsByName("bookstore.save")
	require.Len(t, saveSpans, 1)
	assert.Equal(t, "save", saveSpans[0].StartAttributes["operation"])
	assert.NotEmpty(t, saveSpans[0].StartAttributes["unit_of_work_id"])
	assert.Equal(t, "1", saveSpans[0].EndAttributes["events_dispatched"])

	fetchSpans := tracingSpy.GetSpanRecordsByName("bookstore.fetch")
	require.Len(t, fetchSpans, 1)
	assert.Equal(t, listing.OrderByVotes.DisplayName(), fetchSpans[0].StartAttributes["order"])
	assert.Equal(t, "All", fetchSpans[0].StartAttributes["filter"])
	assert.Equal(t, "1", fetchSpans[0].EndAttributes["rows"])

	for _, span := range tracingSpy.GetSpanRecordsByName("bookstore.load") {
		if span.Status == "error" {
			assert.Equal(t, "not_found", span.EndAttributes["error_type"])
			assert.Equal(t, "error", span.SpanContext.GetStatus())
		}
	}
}

func Test_Observability_WithTracingDisabled_DoesNotFail(t *testing.T) {
	// setup
	tracingSpy := NewTracingCollectorSpy(false)
	store := NewSQLiteStore(t, sqlengine.WithTracing(tracingSpy))

	// act
	GivenPersistedBook(t, store, NewBookFixture("Untraced"))

	// assert
	assert.Empty(t, tracingSpy.GetSpanRecords())
}
