// Package config reads the application configuration from BOOKCATALOG_* environment variables and
// builds the database connections and the catalog store from it.
//
// Supported adapters are "pgx" (pgxpool), "sql" (database/sql with lib/pq), "sqlx", and "sqlite"
// (modernc.org/sqlite, no cgo). The Postgres adapters serve eventually consistent reads from
// BOOKCATALOG_POSTGRES_REPLICA_DSN if it is set.
package config
