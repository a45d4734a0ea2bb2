package config

import (
	"context"
	"database/sql"
	"errors"

	_ "modernc.org/sqlite" // sqlite driver
)

// OpenSQLite opens the SQLite database at dsn with foreign keys enforced.
//
// SQLite allows one writer at a time, so the pool is limited to a single connection. This also keeps
// an in-memory database (":memory:") alive and shared for the lifetime of the returned *sql.DB.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	db.SetMaxOpenConns(1)

	if _, execErr := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); execErr != nil {
		_ = db.Close()
		return nil, errors.Join(ErrConnectingFailed, execErr)
	}

	return db, nil
}
