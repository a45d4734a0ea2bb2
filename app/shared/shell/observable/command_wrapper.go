package observable

import (
	"context"
	"time"

	"github.com/AntonStoeckl/book-catalog-go/app/shared/shell"
)

// CommandWrapper instruments any command handler with metrics, tracing, and logging.
// It translates the HandlerResult and the error of the wrapped handler into the observability signals.
type CommandWrapper[C shell.Command] struct {
	coreHandler      shell.CoreCommandHandler[C]
	commandType      string
	metricsCollector shell.MetricsCollector
	tracingCollector shell.TracingCollector
	contextualLogger shell.ContextualLogger
	logger           shell.Logger
}

// NewCommandWrapper creates a new observable wrapper around the core command handler.
// The command type is taken from the zero value of C.
func NewCommandWrapper[C shell.Command](
	coreHandler shell.CoreCommandHandler[C],
	opts ...CommandOption[C],
) (*CommandWrapper[C], error) {
	var zeroCommand C

	wrapper := &CommandWrapper[C]{
		coreHandler: coreHandler,
		commandType: zeroCommand.CommandType(),
	}

	for _, opt := range opts {
		if err := opt(wrapper); err != nil {
			return nil, err
		}
	}

	return wrapper, nil
}

// Handle delegates to the core handler and records the outcome.
// The result and the error of the core handler are returned unchanged.
func (w *CommandWrapper[C]) Handle(ctx context.Context, command C) (shell.HandlerResult, error) {
	commandStart := time.Now()
	ctx, span := shell.StartCommandSpan(ctx, w.tracingCollector, w.commandType)
	shell.LogCommandStart(ctx, w.logger, w.contextualLogger, w.commandType)

	result, err := w.coreHandler.Handle(ctx, command)
	duration := time.Since(commandStart)

	w.recordRetryMetrics(ctx, result)

	if err != nil {
		status := shell.ClassifyError(err)
		shell.RecordCommandMetrics(ctx, w.metricsCollector, w.commandType, status, duration)
		shell.FinishSpan(w.tracingCollector, span, status, duration, err)
		shell.LogCommandError(ctx, w.logger, w.contextualLogger, w.commandType, err)

		return result, err
	}

	status := shell.StatusSuccess
	if result.Idempotent {
		status = shell.StatusIdempotent
	}

	shell.RecordCommandMetrics(ctx, w.metricsCollector, w.commandType, status, duration)
	shell.FinishSpan(w.tracingCollector, span, status, duration, nil)
	shell.LogCommandSuccess(ctx, w.logger, w.contextualLogger, w.commandType, result, duration)

	return result, nil
}

// recordRetryMetrics records the retries and the total backoff of one command.
func (w *CommandWrapper[C]) recordRetryMetrics(ctx context.Context, result shell.HandlerResult) {
	if w.metricsCollector == nil {
		return
	}

	contextualCollector, isContextual := w.metricsCollector.(shell.ContextualMetricsCollector)

	if result.RetryAttempts > 1 {
		retryLabels := shell.BuildRetryLabels(w.commandType, result.RetryAttempts-1, result.LastErrorType)
		delayLabels := map[string]string{shell.LogAttrCommandType: w.commandType}

		if isContextual {
			contextualCollector.IncrementCounterContext(ctx, shell.CommandHandlerRetriesMetric, retryLabels)
			contextualCollector.RecordDurationContext(ctx, shell.CommandHandlerRetryDelayMetric, result.TotalRetryDelay, delayLabels)
		} else {
			w.metricsCollector.IncrementCounter(shell.CommandHandlerRetriesMetric, retryLabels)
			w.metricsCollector.RecordDuration(shell.CommandHandlerRetryDelayMetric, result.TotalRetryDelay, delayLabels)
		}
	}

	if result.RetriesExhausted {
		exhaustedLabels := map[string]string{
			shell.LogAttrCommandType:  w.commandType,
			shell.LabelFinalErrorType: result.LastErrorType,
		}

		if isContextual {
			contextualCollector.IncrementCounterContext(ctx, shell.CommandHandlerMaxRetriesReachedMetric, exhaustedLabels)
		} else {
			w.metricsCollector.IncrementCounter(shell.CommandHandlerMaxRetriesReachedMetric, exhaustedLabels)
		}
	}
}

// CommandOption defines a functional option for configuring CommandWrapper.
type CommandOption[C shell.Command] func(*CommandWrapper[C]) error

// WithCommandMetrics sets the metrics collector for the CommandWrapper.
func WithCommandMetrics[C shell.Command](collector shell.MetricsCollector) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.metricsCollector = collector
		return nil
	}
}

// WithCommandTracing sets the tracing collector for the CommandWrapper.
func WithCommandTracing[C shell.Command](collector shell.TracingCollector) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.tracingCollector = collector
		return nil
	}
}

// WithCommandContextualLogging sets the contextual logger for the CommandWrapper.
func WithCommandContextualLogging[C shell.Command](logger shell.ContextualLogger) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.contextualLogger = logger
		return nil
	}
}

// WithCommandLogging sets the basic logger for the CommandWrapper.
func WithCommandLogging[C shell.Command](logger shell.Logger) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.logger = logger
		return nil
	}
}
