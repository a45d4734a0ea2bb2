package adapters

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGXAdapter implements DBAdapter for pgxpool.Pool.
type PGXAdapter struct {
	pool        *pgxpool.Pool
	replicaPool *pgxpool.Pool // optional replica for eventually consistent reads
}

// NewPGXAdapter creates a new PGX adapter with a primary pool.
func NewPGXAdapter(pool *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{pool: pool}
}

// NewPGXAdapterWithReplica creates a new PGX adapter with a primary pool and a replica pool.
func NewPGXAdapterWithReplica(pool *pgxpool.Pool, replica *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{pool: pool, replicaPool: replica}
}

// Query executes a query on the primary pool.
func (p *PGXAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	return pgxQuery(ctx, p.pool, query)
}

// QueryFromReplica executes a query using the replica pool if available, otherwise the primary pool.
func (p *PGXAdapter) QueryFromReplica(ctx context.Context, query string) (DBRows, error) {
	if p.replicaPool != nil {
		return pgxQuery(ctx, p.replicaPool, query)
	}

	return pgxQuery(ctx, p.pool, query)
}

// Exec executes a statement using the primary pool and returns the wrapped result.
func (p *PGXAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	return pgxExec(ctx, p.pool, query)
}

// Begin starts a transaction on the primary pool.
func (p *PGXAdapter) Begin(ctx context.Context) (DBTx, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return &pgxTx{tx: tx}, nil
}

// BeginRead starts a read transaction on the replica pool if requested and available.
func (p *PGXAdapter) BeginRead(ctx context.Context, opts ReadTxOptions) (DBTx, error) {
	pool := p.pool
	if opts.FromReplica && p.replicaPool != nil {
		pool = p.replicaPool
	}

	var txOptions pgx.TxOptions
	if opts.Snapshot {
		txOptions = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	}

	tx, err := pool.BeginTx(ctx, txOptions)
	if err != nil {
		return nil, err
	}

	return &pgxTx{tx: tx}, nil
}

// pgxQuerier is what pgxpool.Pool and pgx.Tx have in common.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func pgxQuery(ctx context.Context, q pgxQuerier, query string) (DBRows, error) {
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return &pgxRows{rows: rows}, nil
}

func pgxExec(ctx context.Context, q pgxQuerier, query string) (DBResult, error) {
	tag, err := q.Exec(ctx, query)
	if err != nil {
		return nil, err
	}

	return &pgxResult{tag: tag}, nil
}

// pgxTx wraps pgx.Tx to implement the DBTx interface.
type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) Query(ctx context.Context, query string) (DBRows, error) {
	return pgxQuery(ctx, t.tx, query)
}

func (t *pgxTx) Exec(ctx context.Context, query string) (DBResult, error) {
	return pgxExec(ctx, t.tx, query)
}

func (t *pgxTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// pgxRows wraps pgx.Rows to implement the DBRows interface.
type pgxRows struct {
	rows pgx.Rows
}

// Next advances to the next row.
func (p *pgxRows) Next() bool {
	return p.rows.Next()
}

// Scan copies row values into provided destinations.
func (p *pgxRows) Scan(dest ...any) error {
	return p.rows.Scan(dest...)
}

// Err returns the error that ended the iteration, if any.
func (p *pgxRows) Err() error {
	return p.rows.Err()
}

// Close closes the rows iterator.
func (p *pgxRows) Close() error {
	p.rows.Close()
	return nil
}

// pgxResult wraps pgconn.CommandTag to implement the DBResult interface.
type pgxResult struct {
	tag pgconn.CommandTag
}

// RowsAffected returns the number of rows affected by the command.
func (p *pgxResult) RowsAffected() (int64, error) {
	return p.tag.RowsAffected(), nil
}
