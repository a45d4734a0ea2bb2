package config

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

const postgresDriver = "postgres"

// NewSQLDB opens a database/sql connection pool for dsn with the lib/pq driver and pings it.
func NewSQLDB(ctx context.Context, dsn string, cfg Config) (*sql.DB, error) {
	db, err := sql.Open(postgresDriver, dsn)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	return configureSQLPool(ctx, db, cfg)
}

// NewSQLX opens a sqlx connection pool for dsn with the lib/pq driver and pings it.
func NewSQLX(ctx context.Context, dsn string, cfg Config) (*sqlx.DB, error) {
	db, err := sqlx.Open(postgresDriver, dsn)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	if _, err = configureSQLPool(ctx, db.DB, cfg); err != nil {
		return nil, err
	}

	return db, nil
}

func configureSQLPool(ctx context.Context, db *sql.DB, cfg Config) (*sql.DB, error) {
	db.SetMaxOpenConns(cfg.PoolMaxConns)
	db.SetMaxIdleConns(cfg.PoolMinConns)
	db.SetConnMaxLifetime(cfg.PoolMaxConnLife)
	db.SetConnMaxIdleTime(cfg.PoolMaxConnIdle)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PoolConnectTimeout)
	defer cancel()

	if pingErr := db.PingContext(pingCtx); pingErr != nil {
		_ = db.Close()
		return nil, errors.Join(ErrConnectingFailed, pingErr)
	}

	return db, nil
}
