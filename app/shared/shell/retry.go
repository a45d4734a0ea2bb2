package shell

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
)

const (
	defaultMaxAttempts  = 6
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3

	errorTypeNone                    = "none"
	errorTypeConcurrencyConflict     = "concurrency_conflict"
	errorTypeContextCanceled         = "context_canceled"
	errorTypeContextDeadlineExceeded = "context_deadline_exceeded"
	errorTypeOther                   = "other"
)

// RetryableFunc is one attempt of a unit of work: load the Book, mutate it, save it.
type RetryableFunc func(ctx context.Context) error

// RetryMetrics describes what RetryWithExponentialBackoff did.
type RetryMetrics struct {
	Attempts         int
	TotalDelay       time.Duration
	LastErrorType    string
	RetriesExhausted bool
}

type retryConfig struct {
	maxAttempts      int
	baseDelay        time.Duration
	jitterFactor     float64
	metricsCollector MetricsCollector
	commandType      string
}

// RetryWithExponentialBackoff runs fn and repeats it while it fails with catalog.ErrConcurrencyConflict,
// up to the configured number of attempts. Every attempt must reload the Book, because a Book whose
// unit of work failed is in an undefined state. Any other error ends the loop at once.
func RetryWithExponentialBackoff(ctx context.Context, fn RetryableFunc, options ...RetryOption) (RetryMetrics, error) {
	config := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return RetryMetrics{}, err
		}
	}

	recorder := retryRecorder{collector: config.metricsCollector, commandType: config.commandType}
	metrics := RetryMetrics{LastErrorType: errorTypeNone}
	var lastErr error

	for attempt := range config.maxAttempts {
		if attempt > 0 {
			wait := config.backoff(attempt)
			recorder.duration(ctx, CommandHandlerRetryDelayMetric, wait, map[string]string{
				LabelAttemptNumber: strconv.Itoa(attempt),
			})

			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
				metrics.TotalDelay += wait
			case <-ctx.Done():
				timer.Stop()
				metrics.LastErrorType = classifyRetryError(ctx.Err())
				return metrics, ctx.Err()
			}
		}

		metrics.Attempts++

		lastErr = fn(ctx)
		metrics.LastErrorType = classifyRetryError(lastErr)

		if lastErr == nil || !errors.Is(lastErr, catalog.ErrConcurrencyConflict) {
			return metrics, lastErr
		}

		if attempt < config.maxAttempts-1 {
			recorder.count(ctx, CommandHandlerRetriesMetric, BuildRetryLabels(config.commandType, attempt+1, metrics.LastErrorType))
		}
	}

	metrics.RetriesExhausted = true
	recorder.count(ctx, CommandHandlerMaxRetriesReachedMetric, map[string]string{LabelFinalErrorType: metrics.LastErrorType})

	return metrics, lastErr
}

// backoff is baseDelay doubled per earlier retry, stretched by up to jitterFactor.
func (c *retryConfig) backoff(attempt int) time.Duration {
	delay := c.baseDelay << (attempt - 1)

	return delay + time.Duration(rand.Float64()*float64(delay)*c.jitterFactor) //nolint:gosec // jitter only
}

// retryRecorder sends retry metrics to an optional collector, labeled with the command type.
type retryRecorder struct {
	collector   MetricsCollector
	commandType string
}

func (r retryRecorder) duration(ctx context.Context, name string, d time.Duration, labels map[string]string) {
	if r.collector == nil {
		return
	}

	labels[LogAttrCommandType] = r.commandType

	if contextual, ok := r.collector.(ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, name, d, labels)
		return
	}

	r.collector.RecordDuration(name, d, labels)
}

func (r retryRecorder) count(ctx context.Context, name string, labels map[string]string) {
	if r.collector == nil {
		return
	}

	labels[LogAttrCommandType] = r.commandType

	if contextual, ok := r.collector.(ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, name, labels)
		return
	}

	r.collector.IncrementCounter(name, labels)
}

// classifyRetryError is the error_type label of the retry metrics.
// Timeouts count as final, retrying them would add load to a database that is already slow.
func classifyRetryError(err error) string {
	switch {
	case err == nil:
		return errorTypeNone
	case errors.Is(err, catalog.ErrConcurrencyConflict):
		return errorTypeConcurrencyConflict
	case errors.Is(err, context.Canceled):
		return errorTypeContextCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return errorTypeContextDeadlineExceeded
	default:
		return errorTypeOther
	}
}

// RetryOption configures RetryWithExponentialBackoff.
type RetryOption func(*retryConfig) error

// WithMaxAttempts sets the maximum number of attempts, including the first one.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the wait before the first retry. Each further retry waits twice as long.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithJitterFactor sets the jitter as a fraction of the backoff delay, from 0.0 (none) to 1.0.
func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = factor

		return nil
	}
}

// WithMetrics sets the metrics collector for retry instrumentation, labeled with commandType.
func WithMetrics(collector MetricsCollector, commandType string) RetryOption {
	return func(config *retryConfig) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		if commandType == "" {
			return ErrEmptyCommandType
		}

		config.metricsCollector = collector
		config.commandType = commandType

		return nil
	}
}
