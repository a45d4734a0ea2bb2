package observable_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/book-catalog-go/app/shared/shell"
	"github.com/AntonStoeckl/book-catalog-go/app/shared/shell/observable"
	. "github.com/AntonStoeckl/book-catalog-go/testutil/helper" //nolint:revive
)

func Test_QueryWrapper_Handle_When_QuerySucceeds(t *testing.T) {
	// setup
	metricsSpy := NewMetricsCollectorSpy(true)
	tracingSpy := NewTracingCollectorSpy(true)
	logger, logSpy := NewLoggerSpy()

	// arrange
	handler := &mockQueryHandler{result: mockResult{rows: 3}}

	wrapper, err := observable.NewQueryWrapper[mockQuery, mockResult](
		handler,
		observable.WithQueryMetrics[mockQuery, mockResult](metricsSpy),
		observable.WithQueryTracing[mockQuery, mockResult](tracingSpy),
		observable.WithQueryContextualLogging[mockQuery, mockResult](logger),
	)
	require.NoError(t, err)

	// act
	result, err := wrapper.Handle(context.Background(), mockQuery{})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 3, result.rows)
	assert.True(t, metricsSpy.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).
		WithLabel(shell.LogAttrQueryType, "TestQuery").
		WithStatus(shell.StatusSuccess).
		Assert())
	assert.True(t, metricsSpy.HasDurationRecordForMetric(shell.QueryHandlerDurationMetric).Assert())
	assert.True(t, tracingSpy.HasSpan(shell.SpanNameQueryHandle, shell.StatusSuccess))
	assert.True(t, logSpy.HasInfoLogWithMessage(shell.LogMsgQueryStarted).Assert())
	assert.True(t, logSpy.HasInfoLogWithMessage(shell.LogMsgQueryCompleted).
		WithAttribute(shell.LogAttrQueryType, "TestQuery").
		WithDurationMS().
		Assert())
}

func Test_QueryWrapper_Handle_When_QueryFails(t *testing.T) {
	testCases := []struct {
		name          string
		err           error
		status        string
		statusCounter string
	}{
		{name: "error", err: errors.New("boom"), status: shell.StatusError},
		{name: "canceled", err: context.Canceled, status: shell.StatusCanceled, statusCounter: shell.QueryHandlerCanceledMetric},
		{name: "timeout", err: context.DeadlineExceeded, status: shell.StatusTimeout, statusCounter: shell.QueryHandlerTimeoutMetric},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			metricsSpy := NewMetricsCollectorSpy(true)
			tracingSpy := NewTracingCollectorSpy(true)
			logger, logSpy := NewLoggerSpy()

			// arrange
			handler := &mockQueryHandler{err: tc.err}

			wrapper, err := observable.NewQueryWrapper[mockQuery, mockResult](
				handler,
				observable.WithQueryMetrics[mockQuery, mockResult](metricsSpy),
				observable.WithQueryTracing[mockQuery, mockResult](tracingSpy),
				observable.WithQueryLogging[mockQuery, mockResult](logger),
			)
			require.NoError(t, err)

			// act
			_, err = wrapper.Handle(context.Background(), mockQuery{})

			// assert
			assert.ErrorIs(t, err, tc.err)
			assert.True(t, metricsSpy.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).
				WithStatus(tc.status).
				Assert())
			if tc.statusCounter != "" {
				assert.Equal(t, 1, metricsSpy.CountCounterRecordsForMetric(tc.statusCounter))
			}
			assert.True(t, tracingSpy.HasSpan(shell.SpanNameQueryHandle, tc.status))
			assert.True(t, logSpy.HasErrorLogWithMessage(shell.LogMsgQueryFailed).Assert())
		})
	}
}

type mockQuery struct{}

func (q mockQuery) QueryType() string {
	return "TestQuery"
}

type mockResult struct {
	rows int
}

type mockQueryHandler struct {
	result mockResult
	err    error
}

func (h *mockQueryHandler) Handle(_ context.Context, _ mockQuery) (mockResult, error) {
	return h.result, h.err
}
