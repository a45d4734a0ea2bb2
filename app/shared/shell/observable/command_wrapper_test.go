package observable_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/book-catalog-go/app/shared/shell"
	"github.com/AntonStoeckl/book-catalog-go/app/shared/shell/observable"
	"github.com/AntonStoeckl/book-catalog-go/catalog"
	. "github.com/AntonStoeckl/book-catalog-go/testutil/helper" //nolint:revive
)

func Test_CommandWrapper_Handle_When_CommandSucceeds(t *testing.T) {
	// setup
	metricsSpy := NewMetricsCollectorSpy(true)
	tracingSpy := NewTracingCollectorSpy(true)
	logger, logSpy := NewLoggerSpy()

	// arrange
	expectedResult := shell.HandlerResult{RetryAttempts: 1, LastErrorType: "none"}
	handler := &mockCoreHandler{result: expectedResult}

	wrapper, err := observable.NewCommandWrapper[mockCommand](
		handler,
		observable.WithCommandMetrics[mockCommand](metricsSpy),
		observable.WithCommandTracing[mockCommand](tracingSpy),
		observable.WithCommandContextualLogging[mockCommand](logger),
	)
	require.NoError(t, err)

	// act
	result, err := wrapper.Handle(context.Background(), mockCommand{})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, expectedResult, result)
	assert.Len(t, handler.calls, 1)

	assert.True(t, metricsSpy.HasCounterRecordForMetric(shell.CommandHandlerCallsMetric).
		WithLabel(shell.LogAttrCommandType, "TestCommand").
		WithStatus(shell.StatusSuccess).
		Assert())
	assert.True(t, metricsSpy.HasDurationRecordForMetric(shell.CommandHandlerDurationMetric).
		WithStatus(shell.StatusSuccess).
		Assert())
	assert.Equal(t, 0, metricsSpy.CountCounterRecordsForMetric(shell.CommandHandlerRetriesMetric))

	assert.True(t, tracingSpy.HasSpan(shell.SpanNameCommandHandle, shell.StatusSuccess))

	assert.True(t, logSpy.HasInfoLogWithMessage(shell.LogMsgCommandStarted).
		WithAttribute(shell.LogAttrCommandType, "TestCommand").
		Assert())
	assert.True(t, logSpy.HasInfoLogWithMessage(shell.LogMsgCommandCompleted).
		WithAttribute(shell.LogAttrBusinessOutcome, shell.StatusSuccess).
		WithAttribute(shell.LogAttrRetryAttempts, "1").
		WithDurationMS().
		Assert())
}

func Test_CommandWrapper_Handle_When_CommandIsIdempotent(t *testing.T) {
	// setup
	metricsSpy := NewMetricsCollectorSpy(true)
	logger, logSpy := NewLoggerSpy()

	// arrange
	handler := &mockCoreHandler{result: shell.HandlerResult{Idempotent: true, RetryAttempts: 1}}

	wrapper, err := observable.NewCommandWrapper[mockCommand](
		handler,
		observable.WithCommandMetrics[mockCommand](metricsSpy),
		observable.WithCommandLogging[mockCommand](logger),
	)
	require.NoError(t, err)

	// act
	result, err := wrapper.Handle(context.Background(), mockCommand{})

	// assert
	assert.NoError(t, err)
	assert.True(t, result.Idempotent)
	assert.True(t, metricsSpy.HasCounterRecordForMetric(shell.CommandHandlerIdempotentMetric).
		WithLabel(shell.LogAttrCommandType, "TestCommand").
		Assert())
	assert.True(t, logSpy.HasInfoLogWithMessage(shell.LogMsgCommandCompleted).
		WithAttribute(shell.LogAttrBusinessOutcome, shell.StatusIdempotent).
		Assert())
}

func Test_CommandWrapper_Handle_When_CommandNeededRetries(t *testing.T) {
	// setup
	metricsSpy := NewContextualMetricsCollectorSpy()

	// arrange
	handler := &mockCoreHandler{result: shell.HandlerResult{
		RetryAttempts:   3,
		TotalRetryDelay: 30 * time.Millisecond,
		LastErrorType:   "none",
	}}

	wrapper, err := observable.NewCommandWrapper[mockCommand](
		handler,
		observable.WithCommandMetrics[mockCommand](metricsSpy),
	)
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(context.Background(), mockCommand{})

	// assert
	assert.NoError(t, err)
	assert.True(t, metricsSpy.HasCounterRecordForMetric(shell.CommandHandlerRetriesMetric).
		WithLabel(shell.LabelAttemptNumber, "2").
		Assert())
	assert.True(t, metricsSpy.HasDurationRecordForMetric(shell.CommandHandlerRetryDelayMetric).
		WithLabel(shell.LogAttrCommandType, "TestCommand").
		Assert())
	assert.Equal(t, 0, metricsSpy.CountCounterRecordsForMetric(shell.CommandHandlerMaxRetriesReachedMetric))
	assert.Positive(t, metricsSpy.ContextCalls())
}

func Test_CommandWrapper_Handle_When_CommandFails(t *testing.T) {
	testCases := []struct {
		name          string
		err           error
		status        string
		statusCounter string
	}{
		{name: "business error", err: errors.New("boom"), status: shell.StatusError},
		{name: "canceled", err: context.Canceled, status: shell.StatusCanceled, statusCounter: shell.CommandHandlerCanceledMetric},
		{name: "timeout", err: context.DeadlineExceeded, status: shell.StatusTimeout, statusCounter: shell.CommandHandlerTimeoutMetric},
		{
			name:          "concurrency conflict",
			err:           catalog.ErrConcurrencyConflict,
			status:        shell.StatusConcurrencyConflict,
			statusCounter: shell.CommandHandlerConcurrencyConflictMetric,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			metricsSpy := NewMetricsCollectorSpy(true)
			tracingSpy := NewTracingCollectorSpy(true)
			logger, logSpy := NewLoggerSpy()

			// arrange
			expectedResult := shell.HandlerResult{RetryAttempts: 1}
			handler := &mockCoreHandler{result: expectedResult, err: tc.err}

			wrapper, err := observable.NewCommandWrapper[mockCommand](
				handler,
				observable.WithCommandMetrics[mockCommand](metricsSpy),
				observable.WithCommandTracing[mockCommand](tracingSpy),
				observable.WithCommandContextualLogging[mockCommand](logger),
			)
			require.NoError(t, err)

			// act
			result, err := wrapper.Handle(context.Background(), mockCommand{})

			// assert
			assert.ErrorIs(t, err, tc.err)
			assert.Equal(t, expectedResult, result)
			assert.True(t, metricsSpy.HasCounterRecordForMetric(shell.CommandHandlerCallsMetric).
				WithStatus(tc.status).
				Assert())
			if tc.statusCounter != "" {
				assert.Equal(t, 1, metricsSpy.CountCounterRecordsForMetric(tc.statusCounter))
			}
			assert.True(t, tracingSpy.HasSpan(shell.SpanNameCommandHandle, tc.status))
			assert.True(t, logSpy.HasErrorLogWithMessage(shell.LogMsgCommandFailed).
				WithAttribute(shell.LogAttrError, tc.err.Error()).
				Assert())
		})
	}
}

func Test_CommandWrapper_Handle_When_RetriesAreExhausted(t *testing.T) {
	// setup
	metricsSpy := NewMetricsCollectorSpy(true)

	// arrange
	handler := &mockCoreHandler{
		result: shell.HandlerResult{
			RetryAttempts:    6,
			TotalRetryDelay:  310 * time.Millisecond,
			LastErrorType:    "concurrency_conflict",
			RetriesExhausted: true,
		},
		err: catalog.ErrConcurrencyConflict,
	}

	wrapper, err := observable.NewCommandWrapper[mockCommand](
		handler,
		observable.WithCommandMetrics[mockCommand](metricsSpy),
	)
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(context.Background(), mockCommand{})

	// assert
	assert.ErrorIs(t, err, catalog.ErrConcurrencyConflict)
	assert.True(t, metricsSpy.HasCounterRecordForMetric(shell.CommandHandlerMaxRetriesReachedMetric).
		WithLabel(shell.LabelFinalErrorType, "concurrency_conflict").
		Assert())
	assert.True(t, metricsSpy.HasCounterRecordForMetric(shell.CommandHandlerRetriesMetric).
		WithLabel(shell.LabelAttemptNumber, "5").
		WithErrorType("concurrency_conflict").
		Assert())
}

func Test_CommandWrapper_Handle_When_NoObservabilityIsConfigured(t *testing.T) {
	// arrange
	handler := &mockCoreHandler{result: shell.HandlerResult{RetryAttempts: 1}}

	wrapper, err := observable.NewCommandWrapper[mockCommand](handler)
	require.NoError(t, err)

	// act
	result, err := wrapper.Handle(context.Background(), mockCommand{})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 1, result.RetryAttempts)
	assert.Len(t, handler.calls, 1)
}

func Test_CommandWrapper_NewCommandWrapper_When_OptionFails(t *testing.T) {
	// arrange
	optionErr := errors.New("option failed")
	failingOption := func(_ *observable.CommandWrapper[mockCommand]) error { return optionErr }

	// act
	wrapper, err := observable.NewCommandWrapper[mockCommand](&mockCoreHandler{}, failingOption)

	// assert
	assert.ErrorIs(t, err, optionErr)
	assert.Nil(t, wrapper)
}

type mockCommand struct{}

func (c mockCommand) CommandType() string {
	return "TestCommand"
}

type mockCoreHandler struct {
	result shell.HandlerResult
	err    error
	calls  []mockCommand
}

func (h *mockCoreHandler) Handle(_ context.Context, command mockCommand) (shell.HandlerResult, error) {
	h.calls = append(h.calls, command)
	return h.result, h.err
}
