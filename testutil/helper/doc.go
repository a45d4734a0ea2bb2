// Package helper provides the shared test infrastructure of the book catalog.
//
// It opens throw-away SQLite stores (and Postgres stores when BOOKCATALOG_TEST_POSTGRES_DSN is set),
// builds book fixtures, and offers spies for the Logger, MetricsCollector, and TracingCollector
// interfaces, so that tests can assert on the observability output of the stores and handlers.
package helper
