package adapters

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// SQLXAdapter implements DBAdapter for sqlx.DB.
type SQLXAdapter struct {
	db      *sqlx.DB
	replica *sqlx.DB
}

// NewSQLXAdapter creates a new SQLX adapter.
func NewSQLXAdapter(db *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db}
}

// NewSQLXAdapterWithReplica creates a new SQLX adapter that reads eventually consistent queries from replica.
func NewSQLXAdapterWithReplica(db *sqlx.DB, replica *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db, replica: replica}
}

// Query executes a query using the sqlx.DB and returns wrapped rows.
func (s *SQLXAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	return stdQuery(ctx, s.db, query)
}

// QueryFromReplica executes a query on the replica if configured.
func (s *SQLXAdapter) QueryFromReplica(ctx context.Context, query string) (DBRows, error) {
	if s.replica != nil {
		return stdQuery(ctx, s.replica, query)
	}

	return stdQuery(ctx, s.db, query)
}

// Exec executes a statement using the sqlx.DB and returns the wrapped result.
func (s *SQLXAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	return stdExec(ctx, s.db, query)
}

// Begin starts a transaction with BeginTxx.
func (s *SQLXAdapter) Begin(ctx context.Context) (DBTx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &stdTx{tx: tx.Tx}, nil
}

// BeginRead starts a read transaction with BeginTxx.
func (s *SQLXAdapter) BeginRead(ctx context.Context, opts ReadTxOptions) (DBTx, error) {
	db := s.db
	if opts.FromReplica && s.replica != nil {
		db = s.replica
	}

	tx, err := db.BeginTxx(ctx, stdReadTxOptions(opts))
	if err != nil {
		return nil, err
	}

	return &stdTx{tx: tx.Tx}, nil
}
