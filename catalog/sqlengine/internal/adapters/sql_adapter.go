package adapters

import (
	"context"
	"database/sql"
)

// SQLAdapter implements DBAdapter for sql.DB.
type SQLAdapter struct {
	db      *sql.DB
	replica *sql.DB
}

// NewSQLAdapter creates a new SQL adapter.
func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

// NewSQLAdapterWithReplica creates a new SQL adapter that reads eventually consistent queries from replica.
func NewSQLAdapterWithReplica(db *sql.DB, replica *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db, replica: replica}
}

func (s *SQLAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	return stdQuery(ctx, s.db, query)
}

func (s *SQLAdapter) QueryFromReplica(ctx context.Context, query string) (DBRows, error) {
	if s.replica != nil {
		return stdQuery(ctx, s.replica, query)
	}

	return stdQuery(ctx, s.db, query)
}

func (s *SQLAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	return stdExec(ctx, s.db, query)
}

func (s *SQLAdapter) Begin(ctx context.Context) (DBTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &stdTx{tx: tx}, nil
}

func (s *SQLAdapter) BeginRead(ctx context.Context, opts ReadTxOptions) (DBTx, error) {
	db := s.db
	if opts.FromReplica && s.replica != nil {
		db = s.replica
	}

	tx, err := db.BeginTx(ctx, stdReadTxOptions(opts))
	if err != nil {
		return nil, err
	}

	return &stdTx{tx: tx}, nil
}
