package config

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AntonStoeckl/book-catalog-go/catalog/sqlengine"
)

// OpenStore connects to the configured database and creates the catalog store on it.
// The returned close function releases all connections.
func OpenStore(ctx context.Context, cfg Config, options ...sqlengine.Option) (*sqlengine.Store, func() error, error) {
	if cfg.TablePrefix != "" {
		options = append([]sqlengine.Option{sqlengine.WithTablePrefix(cfg.TablePrefix)}, options...)
	}

	switch cfg.DBAdapter {
	case AdapterPGX:
		return openPGXStore(ctx, cfg, options)
	case AdapterSQLDB:
		return openSQLDBStore(ctx, cfg, options)
	case AdapterSQLX:
		return openSQLXStore(ctx, cfg, options)
	case AdapterSQLite:
		return openSQLiteStore(ctx, cfg, options)
	default:
		return nil, nil, cfg.Validate()
	}
}

func openPGXStore(ctx context.Context, cfg Config, options []sqlengine.Option) (*sqlengine.Store, func() error, error) {
	primary, err := NewPGXPool(ctx, cfg.PostgresDSN, cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.PostgresReplicaDSN == "" {
		store, storeErr := sqlengine.NewStoreFromPGXPool(primary, options...)
		return finishOpen(store, storeErr, func() error { primary.Close(); return nil })
	}

	replica, err := NewPGXPool(ctx, cfg.PostgresReplicaDSN, cfg)
	if err != nil {
		primary.Close()
		return nil, nil, err
	}

	closeAll := func() error {
		primary.Close()
		replica.Close()

		return nil
	}

	store, storeErr := sqlengine.NewStoreFromPGXPoolWithReplica(primary, replica, options...)

	return finishOpen(store, storeErr, closeAll)
}

func openSQLDBStore(ctx context.Context, cfg Config, options []sqlengine.Option) (*sqlengine.Store, func() error, error) {
	primary, err := NewSQLDB(ctx, cfg.PostgresDSN, cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.PostgresReplicaDSN == "" {
		store, storeErr := sqlengine.NewStoreFromSQLDB(primary, options...)
		return finishOpen(store, storeErr, primary.Close)
	}

	replica, err := NewSQLDB(ctx, cfg.PostgresReplicaDSN, cfg)
	if err != nil {
		_ = primary.Close()
		return nil, nil, err
	}

	store, storeErr := sqlengine.NewStoreFromSQLDBWithReplica(primary, replica, options...)

	return finishOpen(store, storeErr, closeSQLDBs(primary, replica))
}

func openSQLXStore(ctx context.Context, cfg Config, options []sqlengine.Option) (*sqlengine.Store, func() error, error) {
	primary, err := NewSQLX(ctx, cfg.PostgresDSN, cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.PostgresReplicaDSN == "" {
		store, storeErr := sqlengine.NewStoreFromSQLX(primary, options...)
		return finishOpen(store, storeErr, primary.Close)
	}

	replica, err := NewSQLX(ctx, cfg.PostgresReplicaDSN, cfg)
	if err != nil {
		_ = primary.Close()
		return nil, nil, err
	}

	store, storeErr := sqlengine.NewStoreFromSQLXWithReplica(primary, replica, options...)

	return finishOpen(store, storeErr, closeSQLDBs(primary.DB, replica.DB))
}

func openSQLiteStore(ctx context.Context, cfg Config, options []sqlengine.Option) (*sqlengine.Store, func() error, error) {
	db, err := OpenSQLite(ctx, cfg.SQLiteDSN)
	if err != nil {
		return nil, nil, err
	}

	options = append([]sqlengine.Option{sqlengine.WithDialect(sqlengine.DialectSQLite)}, options...)
	store, storeErr := sqlengine.NewStoreFromSQLDB(db, options...)

	return finishOpen(store, storeErr, db.Close)
}

func finishOpen(store *sqlengine.Store, err error, closeFn func() error) (*sqlengine.Store, func() error, error) {
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}

	return store, closeFn, nil
}

func closeSQLDBs(dbs ...*sql.DB) func() error {
	return func() error {
		var errs []error
		for _, db := range dbs {
			errs = append(errs, db.Close())
		}

		return errors.Join(errs...)
	}
}

