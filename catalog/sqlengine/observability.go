package sqlengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
)

const (
	logMsgBuildQueryFailed     = "failed to build sql query"
	logMsgDBQueryFailed        = "database query execution failed"
	logMsgDBExecFailed         = "database execution failed"
	logMsgCloseRowsFailed      = "failed to close database rows"
	logMsgScanRowFailed        = "failed to scan database row"
	logMsgBeginTxFailed        = "failed to begin transaction"
	logMsgCommitTxFailed       = "failed to commit transaction"
	logMsgRollbackTxFailed     = "failed to roll back transaction"
	logMsgDispatchFailed       = "dispatching book events failed, unit of work aborted"
	logMsgRowsAffectedFailed   = "failed to get rows affected count"
	logMsgConcurrencyConflict  = "concurrency conflict detected"
	logMsgBookLoaded           = "book loaded"
	logMsgBookSaved            = "book saved"
	logMsgPageFetched          = "page fetched"
	logMsgSchemaCreated        = "schema created"
	logMsgSQLExecuted          = "executed sql for: "
	logMsgOperation            = "bookstore operation: "
	logAttrError               = "error"
	logAttrQuery               = "query"
	logAttrBookID              = "book_id"
	logAttrUnitOfWork          = "unit_of_work_id"
	logAttrEventsDispatched    = "events_dispatched"
	logAttrDirtyFields         = "dirty_fields"
	logAttrReviewsAdded        = "reviews_added"
	logAttrReviewsRemoved      = "reviews_removed"
	logAttrRows                = "rows"
	logAttrTotalRows           = "total_rows"
	logAttrDurationMS          = "duration_ms"
	logAttrIncludes            = "includes"
	logAttrConsistency         = "consistency"
	logActionLoad              = "load"
	logActionSave              = "save"
	logActionFetch             = "fetch"
	logActionSchema            = "schema"
	metricLoadDuration         = "bookstore_load_duration_seconds"
	metricSaveDuration         = "bookstore_save_duration_seconds"
	metricFetchDuration        = "bookstore_fetch_duration_seconds"
	metricEventsDispatched     = "bookstore_events_dispatched"
	metricRowsFetched          = "bookstore_rows_fetched"
	metricConcurrencyConflicts = "bookstore_concurrency_conflicts_total"
	metricDatabaseErrors       = "bookstore_database_errors_total"
	spanNameLoad               = "bookstore.load"
	spanNameSave               = "bookstore.save"
	spanNameFetch              = "bookstore.fetch"
	spanAttrOperation          = "operation"
	spanAttrBookID             = "book_id"
	spanAttrErrorType          = "error_type"
	spanAttrDurationMS         = "duration_ms"
	spanAttrRows               = "rows"
	spanAttrEventsDispatched   = "events_dispatched"
	spanAttrFilter             = "filter"
	spanAttrOrder              = "order"
	labelStatus                = "status"
	labelConflictType          = "conflict_type"
	statusSuccess              = "success"
	statusError                = "error"
	errorTypeBuildQuery        = "build_query"
	errorTypeDatabase          = "database"
	errorTypeScan              = "scan"
	errorTypeNotFound          = "not_found"
	errorTypeDispatch          = "dispatch"
	errorTypeConcurrency       = "concurrency_conflict"
	errorTypeCanceled          = "canceled"
	errorTypeTimeout           = "timeout"
)

// classifyError maps an error onto the error_type label of metrics and spans.
func classifyError(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return errorTypeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return errorTypeTimeout
	case errors.Is(err, catalog.ErrConcurrencyConflict):
		return errorTypeConcurrency
	case errors.Is(err, catalog.ErrBookNotFound):
		return errorTypeNotFound
	case catalog.IsDispatchError(err):
		return errorTypeDispatch
	case errors.Is(err, ErrBuildingQueryFailed):
		return errorTypeBuildQuery
	case errors.Is(err, ErrScanningDBRowFailed):
		return errorTypeScan
	default:
		return errorTypeDatabase
	}
}

// === Logging ===

// logQueryWithDuration logs a SQL statement with its execution time at debug level.
func (s *Store) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	} else if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, args...)
	}
}

// logOperation logs operational information at info level.
func (s *Store) logOperation(ctx context.Context, action string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	} else if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical failures at warn level.
func (s *Store) logWarn(ctx context.Context, message string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, allArgs...)
	} else if s.logger != nil {
		s.logger.Warn(message, allArgs...)
	}
}

// logError logs failures at error level.
func (s *Store) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	} else if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// === Metrics ===

func (s *Store) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
	} else {
		s.metricsCollector.RecordDuration(metric, duration, labels)
	}
}

func (s *Store) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
	} else {
		s.metricsCollector.RecordValue(metric, value, labels)
	}
}

func (s *Store) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
	} else {
		s.metricsCollector.IncrementCounter(metric, labels)
	}
}

// === Operation observer ===
// An operationObserver wraps one store operation in a span and records its duration and outcome.

type operationObserver struct {
	s              *Store
	ctx            context.Context
	operation      string
	durationMetric string
	span           SpanContext
	start          time.Time
}

func (s *Store) observe(
	ctx context.Context,
	operation string,
	spanName string,
	durationMetric string,
	attrs map[string]string,
) (*operationObserver, context.Context) {

	spanAttrs := map[string]string{spanAttrOperation: operation}
	for k, v := range attrs {
		spanAttrs[k] = v
	}

	var span SpanContext
	if s.tracingCollector != nil {
		ctx, span = s.tracingCollector.StartSpan(ctx, spanName, spanAttrs)
	}

	return &operationObserver{
		s:              s,
		ctx:            ctx,
		operation:      operation,
		durationMetric: durationMetric,
		span:           span,
		start:          time.Now(),
	}, ctx
}

func (o *operationObserver) elapsed() time.Duration {
	return time.Since(o.start)
}

// finishSuccess records the duration and closes the span with the given result attributes.
func (o *operationObserver) finishSuccess(attrs map[string]string) time.Duration {
	duration := o.elapsed()

	o.s.recordDuration(o.ctx, o.durationMetric, duration, map[string]string{
		spanAttrOperation: o.operation,
		labelStatus:       statusSuccess,
	})

	if o.span != nil {
		o.span.SetStatus(statusSuccess)
		o.span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", toMilliseconds(duration)))
		for k, v := range attrs {
			o.span.AddAttribute(k, v)
		}

		o.s.tracingCollector.FinishSpan(o.span, statusSuccess, attrs)
	}

	return duration
}

// finishError records the failure with its error type and closes the span.
func (o *operationObserver) finishError(err error) {
	duration := o.elapsed()
	errorType := classifyError(err)

	o.s.recordDuration(o.ctx, o.durationMetric, duration, map[string]string{
		spanAttrOperation: o.operation,
		labelStatus:       statusError,
	})

	if errorType == errorTypeConcurrency {
		o.s.incrementCounter(o.ctx, metricConcurrencyConflicts, map[string]string{
			spanAttrOperation: o.operation,
			labelConflictType: "concurrency",
		})
	} else {
		o.s.incrementCounter(o.ctx, metricDatabaseErrors, map[string]string{
			spanAttrOperation: o.operation,
			labelStatus:       statusError,
			spanAttrErrorType: errorType,
		})
	}

	if o.span != nil {
		o.span.SetStatus(statusError)
		o.span.AddAttribute(spanAttrErrorType, errorType)
		o.span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", toMilliseconds(duration)))

		o.s.tracingCollector.FinishSpan(o.span, statusError, map[string]string{spanAttrErrorType: errorType})
	}
}
