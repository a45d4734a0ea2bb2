package config

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrConnectingFailed is returned when a database connection cannot be established.
var ErrConnectingFailed = errors.New("connecting to the database failed")

const defaultHealthCheckPeriod = time.Minute

// NewPGXPool creates a pgx connection pool for dsn with the configured pool settings and pings it.
func NewPGXPool(ctx context.Context, dsn string, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	poolConfig.MaxConns = int32(cfg.PoolMaxConns) //nolint:gosec // validated
	poolConfig.MinConns = int32(cfg.PoolMinConns) //nolint:gosec // validated
	poolConfig.MaxConnLifetime = cfg.PoolMaxConnLife
	poolConfig.MaxConnIdleTime = cfg.PoolMaxConnIdle
	poolConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = cfg.PoolConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return nil, errors.Join(ErrConnectingFailed, pingErr)
	}

	return pool, nil
}
