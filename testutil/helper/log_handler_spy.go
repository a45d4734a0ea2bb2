package helper

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// LogHandlerSpy is a slog.Handler that captures log records for testing.
type LogHandlerSpy struct {
	records     []slog.Record
	mu          sync.Mutex
	logToStdout bool
}

// NewLogHandlerSpy creates a new LogHandlerSpy.
// Switchable to log to stdout, which helps when debugging a test.
func NewLogHandlerSpy(logToStdout bool) *LogHandlerSpy {
	return &LogHandlerSpy{logToStdout: logToStdout}
}

// NewLoggerSpy returns a *slog.Logger writing into a new LogHandlerSpy, and the spy.
func NewLoggerSpy() (*slog.Logger, *LogHandlerSpy) {
	spy := NewLogHandlerSpy(false)

	return slog.New(spy), spy
}

// Handle implements slog.Handler.
func (s *LogHandlerSpy) Handle(ctx context.Context, record slog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record.Clone())

	if s.logToStdout {
		_ = slog.NewJSONHandler(os.Stdout, nil).Handle(ctx, record)
	}

	return nil
}

// Enabled implements slog.Handler. All levels are captured.
func (s *LogHandlerSpy) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// WithAttrs implements slog.Handler. Handler attributes are not captured.
func (s *LogHandlerSpy) WithAttrs(_ []slog.Attr) slog.Handler {
	return s
}

// WithGroup implements slog.Handler.
func (s *LogHandlerSpy) WithGroup(_ string) slog.Handler {
	return s
}

// GetRecords returns a copy of all captured records.
func (s *LogHandlerSpy) GetRecords() []slog.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]slog.Record(nil), s.records...)
}

// Reset clears all captured records.
func (s *LogHandlerSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}

// HasDebugLogWithMessage starts a fluent chain over the debug records with message.
func (s *LogHandlerSpy) HasDebugLogWithMessage(message string) *SpyLogRecordMatcher {
	return s.match(slog.LevelDebug, message)
}

// HasInfoLogWithMessage starts a fluent chain over the info records with message.
func (s *LogHandlerSpy) HasInfoLogWithMessage(message string) *SpyLogRecordMatcher {
	return s.match(slog.LevelInfo, message)
}

// HasWarnLogWithMessage starts a fluent chain over the warn records with message.
func (s *LogHandlerSpy) HasWarnLogWithMessage(message string) *SpyLogRecordMatcher {
	return s.match(slog.LevelWarn, message)
}

// HasErrorLogWithMessage starts a fluent chain over the error records with message.
func (s *LogHandlerSpy) HasErrorLogWithMessage(message string) *SpyLogRecordMatcher {
	return s.match(slog.LevelError, message)
}

func (s *LogHandlerSpy) match(level slog.Level, message string) *SpyLogRecordMatcher {
	s.mu.Lock()
	defer s.mu.Unlock()

	var candidates []slog.Record
	for _, record := range s.records {
		if record.Level == level && record.Message == message {
			candidates = append(candidates, record)
		}
	}

	return &SpyLogRecordMatcher{candidates: candidates}
}

// SpyLogRecordMatcher narrows down the matching records step by step.
// Assert is true if at least one record satisfies every step.
type SpyLogRecordMatcher struct {
	candidates []slog.Record
}

func (m *SpyLogRecordMatcher) keep(pred func(slog.Attr) bool) *SpyLogRecordMatcher {
	var kept []slog.Record
	for _, record := range m.candidates {
		found := false
		record.Attrs(func(attr slog.Attr) bool {
			if pred(attr) {
				found = true
				return false
			}

			return true
		})

		if found {
			kept = append(kept, record)
		}
	}
	m.candidates = kept

	return m
}

// WithDurationMS keeps records with a non-negative duration_ms attribute.
func (m *SpyLogRecordMatcher) WithDurationMS() *SpyLogRecordMatcher {
	return m.keep(func(attr slog.Attr) bool {
		if attr.Key != "duration_ms" {
			return false
		}

		switch attr.Value.Kind() {
		case slog.KindInt64:
			return attr.Value.Int64() >= 0
		case slog.KindFloat64:
			return attr.Value.Float64() >= 0
		default:
			return false
		}
	})
}

// WithAttribute keeps records with an attribute key whose value renders as value.
func (m *SpyLogRecordMatcher) WithAttribute(key string, value string) *SpyLogRecordMatcher {
	return m.keep(func(attr slog.Attr) bool {
		return attr.Key == key && attr.Value.String() == value
	})
}

// WithKey keeps records that have an attribute key.
func (m *SpyLogRecordMatcher) WithKey(key string) *SpyLogRecordMatcher {
	return m.keep(func(attr slog.Attr) bool {
		return attr.Key == key
	})
}

// Assert returns true if all conditions in the fluent chain were met.
func (m *SpyLogRecordMatcher) Assert() bool {
	return len(m.candidates) > 0
}
