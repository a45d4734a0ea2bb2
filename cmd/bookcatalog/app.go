package main

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/book-catalog-go/app/config"
	"github.com/AntonStoeckl/book-catalog-go/app/shared/shell"
	"github.com/AntonStoeckl/book-catalog-go/app/shared/shell/observable"
	"github.com/AntonStoeckl/book-catalog-go/catalog/oteladapters"
	"github.com/AntonStoeckl/book-catalog-go/catalog/sqlengine"
)

const instrumentationName = "github.com/AntonStoeckl/book-catalog-go/cmd/bookcatalog"

// app holds the store and the observability collaborators shared by all subcommands.
// Metrics and traces go to the global OpenTelemetry providers, which are no-ops unless the
// process registers real ones.
type app struct {
	cfg        config.Config
	logger     *slog.Logger
	metrics    shell.MetricsCollector
	tracing    shell.TracingCollector
	store      *sqlengine.Store
	closeStore func() error
	stdout     io.Writer
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger, stdout io.Writer) (*app, error) {
	metrics := oteladapters.NewMetricsCollector(otel.Meter(instrumentationName))
	tracing := oteladapters.NewTracingCollector(otel.Tracer(instrumentationName))

	store, closeStore, err := config.OpenStore(
		ctx,
		cfg,
		sqlengine.WithLogger(logger),
		sqlengine.WithMetrics(metrics),
		sqlengine.WithTracing(tracing),
	)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
		tracing:    tracing,
		store:      store,
		closeStore: closeStore,
		stdout:     stdout,
	}, nil
}

func (a *app) close() {
	if err := a.closeStore(); err != nil {
		a.logger.Warn("closing the database failed", "error", err.Error())
	}
}

func (a *app) createSchema(ctx context.Context) error {
	if err := a.store.CreateSchema(ctx); err != nil {
		return err
	}

	a.logger.Info("schema created", "adapter", a.cfg.DBAdapter, "dialect", string(a.store.Dialect()))

	return nil
}

func observedCommand[C shell.Command](a *app, core shell.CoreCommandHandler[C]) (*observable.CommandWrapper[C], error) {
	return observable.NewCommandWrapper[C](
		core,
		observable.WithCommandLogging[C](a.logger),
		observable.WithCommandMetrics[C](a.metrics),
		observable.WithCommandTracing[C](a.tracing),
	)
}

func observedQuery[Q shell.Query, R any](a *app, core shell.CoreQueryHandler[Q, R]) (*observable.QueryWrapper[Q, R], error) {
	return observable.NewQueryWrapper[Q, R](
		core,
		observable.WithQueryLogging[Q, R](a.logger),
		observable.WithQueryMetrics[Q, R](a.metrics),
		observable.WithQueryTracing[Q, R](a.tracing),
	)
}
