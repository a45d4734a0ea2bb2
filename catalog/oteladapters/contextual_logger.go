package oteladapters

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
)

// SlogBridgeLogger is a *slog.Logger that satisfies catalog.ContextualLogger. Built by NewSlogBridgeLogger,
// its records go through the OpenTelemetry bridge and carry the trace and span IDs of the context.
type SlogBridgeLogger struct {
	*slog.Logger
}

// NewSlogBridgeLogger emits to the global OpenTelemetry LoggerProvider.
func NewSlogBridgeLogger(name string) *SlogBridgeLogger {
	return &SlogBridgeLogger{Logger: otelslog.NewLogger(name)}
}

// NewSlogBridgeLoggerWithProvider emits to provider.
func NewSlogBridgeLoggerWithProvider(name string, provider log.LoggerProvider) *SlogBridgeLogger {
	return &SlogBridgeLogger{Logger: otelslog.NewLogger(name, otelslog.WithLoggerProvider(provider))}
}

// NewSlogBridgeLoggerWithHandler writes to handler without trace correlation.
func NewSlogBridgeLoggerWithHandler(handler slog.Handler) *SlogBridgeLogger {
	return &SlogBridgeLogger{Logger: slog.New(handler)}
}

var _ catalog.ContextualLogger = (*SlogBridgeLogger)(nil)

// OTelLogger implements catalog.ContextualLogger directly on the OpenTelemetry logs API.
// The args are key/value pairs like for slog; a trailing key without value is dropped.
type OTelLogger struct {
	logger log.Logger
}

// NewOTelLogger wraps logger, e.g. provider.Logger("bookcatalog").
func NewOTelLogger(logger log.Logger) *OTelLogger {
	return &OTelLogger{logger: logger}
}

func (l *OTelLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityDebug, msg, args)
}

func (l *OTelLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityInfo, msg, args)
}

func (l *OTelLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityWarn, msg, args)
}

func (l *OTelLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityError, msg, args)
}

func (l *OTelLogger) emit(ctx context.Context, severity log.Severity, msg string, args []any) {
	var record log.Record
	record.SetSeverity(severity)
	record.SetSeverityText(severity.String())
	record.SetBody(log.StringValue(msg))

	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}

		record.AddAttributes(toLogKeyValue(key, args[i+1]))
	}

	l.logger.Emit(ctx, record)
}

func toLogKeyValue(key string, value any) log.KeyValue {
	switch v := value.(type) {
	case string:
		return log.String(key, v)
	case int:
		return log.Int(key, v)
	case int64:
		return log.Int64(key, v)
	case float64:
		return log.Float64(key, v)
	case bool:
		return log.Bool(key, v)
	case error:
		return log.String(key, v.Error())
	default:
		return log.String(key, slog.AnyValue(v).String())
	}
}

var _ catalog.ContextualLogger = (*OTelLogger)(nil)
