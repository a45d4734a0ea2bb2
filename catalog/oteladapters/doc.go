// Package oteladapters implements the catalog observability interfaces on top of OpenTelemetry.
//
// Wire them into a store like this:
//
//	store, err := sqlengine.NewStoreFromPGXPool(
//		pool,
//		sqlengine.WithTracing(oteladapters.NewTracingCollector(otel.Tracer("bookcatalog"))),
//		sqlengine.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter("bookcatalog"))),
//		sqlengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger("bookcatalog")),
//	)
package oteladapters
