// Package adapters provide the database adapter implementations for the SQL book store.
//
// Three connection types are supported: pgxpool.Pool, sql.DB, and sqlx.DB. Each adapter offers
// plain queries and executions plus transactions behind the DBAdapter interface, so the store
// works the same with any of them. sql.DB and sqlx.DB may use any database/sql driver, which is how
// the store runs on SQLite.
package adapters
