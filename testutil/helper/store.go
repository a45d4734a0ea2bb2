package helper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver for database/sql
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // sqlite driver for database/sql

	"github.com/AntonStoeckl/book-catalog-go/catalog/sqlengine"
)

const (
	// PostgresDSNEnv names the variable that enables the Postgres tests.
	PostgresDSNEnv = "BOOKCATALOG_TEST_POSTGRES_DSN"

	// PostgresAdapterEnv selects the driver of the Postgres tests: pgxpool (default), sqldb, or sqlx.
	PostgresAdapterEnv = "BOOKCATALOG_TEST_ADAPTER"

	adapterPGXPool = "pgxpool"
	adapterSQLDB   = "sqldb"
	adapterSQLX    = "sqlx"
)

// OpenSQLiteDB opens a private in-memory SQLite database with foreign keys enabled.
// It is closed when the test ends.
func OpenSQLiteDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "error opening sqlite in test setup")

	// every connection of an in-memory database is a separate database
	db.SetMaxOpenConns(1)

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err, "error enabling foreign keys in test setup")

	t.Cleanup(func() { _ = db.Close() })

	return db
}

// NewSQLiteStore returns a Store on a fresh in-memory SQLite database with the schema created.
func NewSQLiteStore(t testing.TB, options ...sqlengine.Option) *sqlengine.Store {
	t.Helper()

	db := OpenSQLiteDB(t)
	store, err := sqlengine.NewStoreFromSQLDB(db, append([]sqlengine.Option{sqlengine.WithDialect(sqlengine.DialectSQLite)}, options...)...)
	require.NoError(t, err, "error creating the store in test setup")

	require.NoError(t, store.CreateSchema(context.Background()), "error creating the schema in test setup")

	return store
}

// NewSQLiteStoreWithReplica returns a Store whose eventually consistent reads go to a second, separate database.
// Both databases get the schema, the replica is never written to.
func NewSQLiteStoreWithReplica(t testing.TB, options ...sqlengine.Option) (*sqlengine.Store, *sqlengine.Store) {
	t.Helper()

	primary := OpenSQLiteDB(t)
	replica := OpenSQLiteDB(t)
	options = append([]sqlengine.Option{sqlengine.WithDialect(sqlengine.DialectSQLite)}, options...)

	store, err := sqlengine.NewStoreFromSQLDBWithReplica(primary, replica, options...)
	require.NoError(t, err, "error creating the store in test setup")

	replicaStore, err := sqlengine.NewStoreFromSQLDB(replica, options...)
	require.NoError(t, err, "error creating the replica store in test setup")

	ctx := context.Background()
	require.NoError(t, store.CreateSchema(ctx), "error creating the schema in test setup")
	require.NoError(t, replicaStore.CreateSchema(ctx), "error creating the replica schema in test setup")

	return store, replicaStore
}

// NewPostgresStore returns a Store on the database named by BOOKCATALOG_TEST_POSTGRES_DSN, or skips the test.
// Every test gets its own table prefix; the tables are dropped when the test ends.
func NewPostgresStore(t testing.TB, options ...sqlengine.Option) *sqlengine.Store {
	t.Helper()

	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s is not set", PostgresDSNEnv)
	}

	prefix := fmt.Sprintf("t%s_", strings.ReplaceAll(GivenUniqueID(t).String()[:8], "-", ""))
	options = append([]sqlengine.Option{sqlengine.WithTablePrefix(prefix)}, options...)

	var (
		store *sqlengine.Store
		err   error
	)

	switch adapter := strings.ToLower(os.Getenv(PostgresAdapterEnv)); adapter {
	case adapterPGXPool, "":
		pool, poolErr := pgxpool.New(context.Background(), dsn)
		require.NoError(t, poolErr, "error connecting to DB pool in test setup")
		t.Cleanup(pool.Close)
		store, err = sqlengine.NewStoreFromPGXPool(pool, options...)

	case adapterSQLDB:
		db, openErr := sql.Open("postgres", dsn)
		require.NoError(t, openErr, "error connecting to DB in test setup")
		t.Cleanup(func() { _ = db.Close() })
		store, err = sqlengine.NewStoreFromSQLDB(db, options...)

	case adapterSQLX:
		db, openErr := sqlx.Open("postgres", dsn)
		require.NoError(t, openErr, "error connecting to DB in test setup")
		t.Cleanup(func() { _ = db.Close() })
		store, err = sqlengine.NewStoreFromSQLX(db, options...)

	default:
		t.Fatalf("unsupported adapter type from env: %s", adapter)
	}

	require.NoError(t, err, "error creating the store in test setup")

	ctx := context.Background()
	require.NoError(t, store.CreateSchema(ctx), "error creating the schema in test setup")
	t.Cleanup(func() { _ = store.DropSchema(context.Background()) })

	return store
}
