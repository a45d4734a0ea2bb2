package shell

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
)

const (
	// CommandHandlerDurationMetric tracks command handler execution duration (OpenTelemetry-compatible).
	CommandHandlerDurationMetric = "commandhandler_handle_duration_seconds"

	// CommandHandlerCallsMetric tracks total command handler calls.
	CommandHandlerCallsMetric = "commandhandler_handle_calls_total"

	// CommandHandlerIdempotentMetric tracks commands that did not change the Book.
	CommandHandlerIdempotentMetric = "commandhandler_idempotent_operations_total"

	// CommandHandlerCanceledMetric tracks canceled operations.
	CommandHandlerCanceledMetric = "commandhandler_canceled_operations_total"

	// CommandHandlerTimeoutMetric tracks timeout operations.
	CommandHandlerTimeoutMetric = "commandhandler_timeout_operations_total"

	// CommandHandlerConcurrencyConflictMetric tracks commands that failed on a concurrency conflict after all retries.
	CommandHandlerConcurrencyConflictMetric = "commandhandler_concurrency_conflicts_total"

	// QueryHandlerDurationMetric tracks query handler execution duration (OpenTelemetry-compatible).
	QueryHandlerDurationMetric = "queryhandler_handle_duration_seconds"

	// QueryHandlerCallsMetric tracks total query handler calls.
	QueryHandlerCallsMetric = "queryhandler_handle_calls_total"

	// QueryHandlerCanceledMetric tracks canceled query operations.
	QueryHandlerCanceledMetric = "queryhandler_canceled_operations_total"

	// QueryHandlerTimeoutMetric tracks timeout query operations.
	QueryHandlerTimeoutMetric = "queryhandler_timeout_operations_total"

	// CommandHandlerRetriesMetric tracks retry attempts in command handlers.
	//
	// Labels:
	//   - command_type: Type of command being retried (e.g., "AddReview")
	//   - attempt_number: Which retry attempt (1, 2, 3, 4, 5)
	//   - error_type: Category of error causing retry (always "concurrency_conflict" today)
	//
	// Use cases:
	//   - Alert on high retry rates: rate(commandhandler_retries_total[5m])
	//   - Find hot books: many AddReview retries mean many voters on the same Book
	CommandHandlerRetriesMetric = "commandhandler_retries_total"

	// CommandHandlerRetryDelayMetric tracks retry delays in command handlers.
	//
	// Labels:
	//   - command_type: Type of command being retried
	//   - attempt_number: Which retry attempt (1, 2, 3, 4, 5)
	CommandHandlerRetryDelayMetric = "commandhandler_retry_delay_seconds"

	// CommandHandlerMaxRetriesReachedMetric tracks when max retries are exhausted.
	//
	// Labels:
	//   - command_type: Type of command that exhausted retries
	//   - final_error_type: Error type that caused final failure
	CommandHandlerMaxRetriesReachedMetric = "commandhandler_max_retries_reached_total"

	// StatusSuccess indicates successful completion.
	StatusSuccess = "success"

	// StatusError indicates a processing error.
	StatusError = "error"

	// StatusIdempotent indicates no state change was needed.
	StatusIdempotent = "idempotent"

	// StatusCanceled indicates the operation was canceled due to context cancellation.
	StatusCanceled = "canceled"

	// StatusTimeout indicates the operation timed out due to context deadline exceeded.
	StatusTimeout = "timeout"

	// StatusConcurrencyConflict indicates the operation failed due to optimistic concurrency control.
	StatusConcurrencyConflict = "concurrency_conflict"

	// LogMsgCommandStarted is logged when command processing begins.
	LogMsgCommandStarted = "command handler started"

	// LogMsgCommandCompleted is logged when command processing succeeds.
	LogMsgCommandCompleted = "command handler completed"

	// LogMsgCommandFailed is logged when command processing fails.
	LogMsgCommandFailed = "command handler failed"

	// LogMsgQueryStarted is logged when query processing begins.
	LogMsgQueryStarted = "query handler started"

	// LogMsgQueryCompleted is logged when query processing succeeds.
	LogMsgQueryCompleted = "query handler completed"

	// LogMsgQueryFailed is logged when query processing fails.
	LogMsgQueryFailed = "query handler failed"

	// LogAttrCommandType identifies the command type in logs.
	LogAttrCommandType = "command_type"

	// LogAttrQueryType identifies the query type in logs.
	LogAttrQueryType = "query_type"

	// LogAttrStatus indicates the processing status.
	LogAttrStatus = "status"

	// LogAttrDurationMS indicates the processing duration in milliseconds.
	LogAttrDurationMS = "duration_ms"

	// LogAttrBusinessOutcome classifies the business result.
	LogAttrBusinessOutcome = "business_outcome"

	// LogAttrError contains error details.
	LogAttrError = "error"

	// LogAttrRetryAttempts is the number of attempts a command needed.
	LogAttrRetryAttempts = "retry_attempts"

	// LabelAttemptNumber is the retry attempt label of the retry metrics.
	LabelAttemptNumber = "attempt_number"

	// LabelErrorType is the error category label of the retry metrics.
	LabelErrorType = "error_type"

	// LabelFinalErrorType is the error category that exhausted the retries.
	LabelFinalErrorType = "final_error_type"

	// SpanNameCommandHandle is the tracing span name for command handling.
	SpanNameCommandHandle = "commandhandler.handle"

	// SpanNameQueryHandle is the tracing span name for query handling.
	SpanNameQueryHandle = "queryhandler.handle"
)

// Interface aliases, so that handlers and wrappers share the observability contracts of the catalog packages.
type (
	MetricsCollector           = catalog.MetricsCollector
	ContextualMetricsCollector = catalog.ContextualMetricsCollector
	TracingCollector           = catalog.TracingCollector
	SpanContext                = catalog.SpanContext
	ContextualLogger           = catalog.ContextualLogger
	Logger                     = catalog.Logger
)

// BuildCommandLabels creates standard metric labels for command handler operations.
func BuildCommandLabels(commandType, status string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LogAttrStatus:      status,
	}
}

// BuildQueryLabels creates standard metric labels for query handler operations.
func BuildQueryLabels(queryType, status string) map[string]string {
	return map[string]string{
		LogAttrQueryType: queryType,
		LogAttrStatus:    status,
	}
}

// BuildRetryLabels creates standard metric labels for retry operations.
func BuildRetryLabels(commandType string, attemptNumber int, errorType string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LabelAttemptNumber: strconv.Itoa(attemptNumber),
		LabelErrorType:     errorType,
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds with precision.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// RecordCommandMetrics records the duration and call counter of a command, plus one of the
// idempotent, canceled, timeout, or concurrency conflict counters when status calls for it.
func RecordCommandMetrics(
	ctx context.Context,
	collector MetricsCollector,
	commandType string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildCommandLabels(commandType, status)
	recordDuration(ctx, collector, CommandHandlerDurationMetric, duration, labels)
	incrementCounter(ctx, collector, CommandHandlerCallsMetric, labels)

	statusCounters := map[string]string{
		StatusIdempotent:          CommandHandlerIdempotentMetric,
		StatusCanceled:            CommandHandlerCanceledMetric,
		StatusTimeout:             CommandHandlerTimeoutMetric,
		StatusConcurrencyConflict: CommandHandlerConcurrencyConflictMetric,
	}

	if metric, ok := statusCounters[status]; ok {
		incrementCounter(ctx, collector, metric, BuildCommandLabels(commandType, status))
	}
}

// RecordQueryMetrics records the duration and call counter of a query, plus the canceled or timeout counter.
func RecordQueryMetrics(
	ctx context.Context,
	collector MetricsCollector,
	queryType string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildQueryLabels(queryType, status)
	recordDuration(ctx, collector, QueryHandlerDurationMetric, duration, labels)
	incrementCounter(ctx, collector, QueryHandlerCallsMetric, labels)

	switch status {
	case StatusCanceled:
		incrementCounter(ctx, collector, QueryHandlerCanceledMetric, BuildQueryLabels(queryType, status))
	case StatusTimeout:
		incrementCounter(ctx, collector, QueryHandlerTimeoutMetric, BuildQueryLabels(queryType, status))
	}
}

func recordDuration(
	ctx context.Context,
	collector MetricsCollector,
	metric string,
	duration time.Duration,
	labels map[string]string,
) {
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	collector.RecordDuration(metric, duration, labels)
}

func incrementCounter(ctx context.Context, collector MetricsCollector, metric string, labels map[string]string) {
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	collector.IncrementCounter(metric, labels)
}

// StartCommandSpan starts a distributed tracing span for command operations.
// Returns the updated context and span context, or original context and nil if tracing is disabled.
func StartCommandSpan(ctx context.Context, tracingCollector TracingCollector, commandType string) (context.Context, SpanContext) {
	if tracingCollector == nil {
		return ctx, nil
	}

	return tracingCollector.StartSpan(ctx, SpanNameCommandHandle, map[string]string{LogAttrCommandType: commandType})
}

// StartQuerySpan starts a distributed tracing span for query operations.
// Returns the updated context and span context, or original context and nil if tracing is disabled.
func StartQuerySpan(ctx context.Context, tracingCollector TracingCollector, queryType string) (context.Context, SpanContext) {
	if tracingCollector == nil {
		return ctx, nil
	}

	return tracingCollector.StartSpan(ctx, SpanNameQueryHandle, map[string]string{LogAttrQueryType: queryType})
}

// FinishSpan completes a command or query span with the operation outcome.
func FinishSpan(
	tracingCollector TracingCollector,
	span SpanContext,
	status string,
	duration time.Duration,
	err error,
) {
	if tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: strconv.FormatFloat(ToMilliseconds(duration), 'f', 2, 64),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	tracingCollector.FinishSpan(span, status, attrs)
}

// LogCommandStart logs the beginning of command processing.
func LogCommandStart(ctx context.Context, logger Logger, contextualLogger ContextualLogger, commandType string) {
	logInfo(ctx, logger, contextualLogger, LogMsgCommandStarted, LogAttrCommandType, commandType)
}

// LogCommandSuccess logs successful command completion.
func LogCommandSuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	result HandlerResult,
	duration time.Duration,
) {
	businessOutcome := StatusSuccess
	if result.Idempotent {
		businessOutcome = StatusIdempotent
	}

	logInfo(
		ctx, logger, contextualLogger, LogMsgCommandCompleted,
		LogAttrCommandType, commandType,
		LogAttrBusinessOutcome, businessOutcome,
		LogAttrRetryAttempts, result.RetryAttempts,
		LogAttrDurationMS, ToMilliseconds(duration),
	)
}

// LogCommandError logs command processing errors.
func LogCommandError(ctx context.Context, logger Logger, contextualLogger ContextualLogger, commandType string, err error) {
	logError(ctx, logger, contextualLogger, LogMsgCommandFailed, LogAttrCommandType, commandType, LogAttrError, err.Error())
}

// LogQueryStart logs the beginning of query processing.
func LogQueryStart(ctx context.Context, logger Logger, contextualLogger ContextualLogger, queryType string) {
	logInfo(ctx, logger, contextualLogger, LogMsgQueryStarted, LogAttrQueryType, queryType)
}

// LogQuerySuccess logs successful query completion.
func LogQuerySuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	queryType string,
	duration time.Duration,
) {
	logInfo(
		ctx, logger, contextualLogger, LogMsgQueryCompleted,
		LogAttrQueryType, queryType,
		LogAttrBusinessOutcome, StatusSuccess,
		LogAttrDurationMS, ToMilliseconds(duration),
	)
}

// LogQueryError logs query processing errors.
func LogQueryError(ctx context.Context, logger Logger, contextualLogger ContextualLogger, queryType string, err error) {
	logError(ctx, logger, contextualLogger, LogMsgQueryFailed, LogAttrQueryType, queryType, LogAttrError, err.Error())
}

func logInfo(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Info(msg, args...)
	}
}

func logError(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Error(msg, args...)
	}
}

// ClassifyError maps a failed command or query onto its status.
func ClassifyError(err error) string {
	switch {
	case IsCancellationError(err):
		return StatusCanceled
	case IsTimeoutError(err):
		return StatusTimeout
	case IsConcurrencyConflictError(err):
		return StatusConcurrencyConflict
	default:
		return StatusError
	}
}

// IsCancellationError checks if an error is due to context cancellation.
func IsCancellationError(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsTimeoutError checks if an error is due to context deadline exceeded.
func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IsConcurrencyConflictError checks if an error is due to optimistic concurrency control failure.
func IsConcurrencyConflictError(err error) bool {
	return errors.Is(err, catalog.ErrConcurrencyConflict)
}
