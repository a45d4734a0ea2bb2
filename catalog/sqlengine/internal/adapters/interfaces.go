package adapters

import "context"

// DBQuerier is the part shared by a connection and a transaction.
type DBQuerier interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
}

// DBAdapter defines the database operations needed by the book store.
type DBAdapter interface {
	DBQuerier

	// QueryFromReplica reads from the replica if one is configured, otherwise from the primary.
	QueryFromReplica(ctx context.Context, query string) (DBRows, error)

	// Begin starts a transaction on the primary.
	Begin(ctx context.Context) (DBTx, error)

	// BeginRead starts a transaction for several reads that must see the same data.
	BeginRead(ctx context.Context, opts ReadTxOptions) (DBTx, error)
}

// ReadTxOptions configures BeginRead.
type ReadTxOptions struct {
	// FromReplica runs the transaction on the replica if one is configured.
	FromReplica bool

	// Snapshot asks for a read-only REPEATABLE READ transaction. Leave it off for SQLite,
	// where every transaction is serializable and isolation levels are not configurable.
	Snapshot bool
}

// DBTx is a running transaction.
type DBTx interface {
	DBQuerier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
}
