package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
	"github.com/AntonStoeckl/book-catalog-go/catalog/sqlengine/internal/adapters"
)

// Dialect is the SQL dialect the store generates. The values are the goqu dialect names.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

const (
	tableBooks       = "books"
	tableReviews     = "reviews"
	tableBookAuthors = "book_authors"
	tableBookTags    = "book_tags"

	colID                         = "id"
	colTitle                      = "title"
	colDescription                = "description"
	colPublishedOn                = "published_on"
	colLastSignificantChange      = "last_significant_change"
	colPublisher                  = "publisher"
	colOrgPrice                   = "org_price"
	colActualPrice                = "actual_price"
	colPromotionalText            = "promotional_text"
	colImageURL                   = "image_url"
	colSoftDeleted                = "soft_deleted"
	colAuthorsOrdered             = "authors_ordered"
	colAuthorsOrderedVersion      = "authors_ordered_version"
	colReviewsCount               = "reviews_count"
	colReviewsCountVersion        = "reviews_count_version"
	colReviewsAverageVotes        = "reviews_average_votes"
	colReviewsAverageVotesVersion = "reviews_average_votes_version"
	colBookID                     = "book_id"
	colNumStars                   = "num_stars"
	colComment                    = "comment"
	colVoterName                  = "voter_name"
	colAuthorID                   = "author_id"
	colOrder                      = "ord"
	colTagID                      = "tag_id"
)

// Store persists Book aggregates in a SQL database and serves the list read path.
//
// It implements the unit of work for a Book (Save) and the push-down execution of a listing.ListQuery (Fetch).
type Store struct {
	db               adapters.DBAdapter
	dialect          Dialect
	tablePrefix      string
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
}

// NewStoreFromPGXPool creates a new Postgres Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), DialectPostgres, true, options)
}

// NewStoreFromPGXPoolWithReplica creates a new Postgres Store that serves eventually consistent reads from replica.
func NewStoreFromPGXPoolWithReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil || replica == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapterWithReplica(db, replica), DialectPostgres, true, options)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
// The dialect defaults to Postgres; use WithDialect(DialectSQLite) for SQLite.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), DialectPostgres, false, options)
}

// NewStoreFromSQLDBWithReplica creates a new Store using a sql.DB that serves eventually consistent reads from replica.
func NewStoreFromSQLDBWithReplica(db *sql.DB, replica *sql.DB, options ...Option) (*Store, error) {
	if db == nil || replica == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapterWithReplica(db, replica), DialectPostgres, false, options)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
// The dialect defaults to Postgres; use WithDialect(DialectSQLite) for SQLite.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), DialectPostgres, false, options)
}

// NewStoreFromSQLXWithReplica creates a new Store using a sqlx.DB that serves eventually consistent reads from replica.
func NewStoreFromSQLXWithReplica(db *sqlx.DB, replica *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil || replica == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapterWithReplica(db, replica), DialectPostgres, false, options)
}

func newStore(db adapters.DBAdapter, dialect Dialect, fixedDialect bool, options []Option) (*Store, error) {
	s := &Store{
		db:      db,
		dialect: dialect,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	if fixedDialect && s.dialect != dialect {
		return nil, ErrDialectNotConfigurable
	}

	return s, nil
}

// Dialect returns the configured SQL dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

func (s *Store) builder() goqu.DialectWrapper {
	return goqu.Dialect(string(s.dialect))
}

func (s *Store) table(name string) string {
	return s.tablePrefix + name
}

// reader picks the connection for a read, honoring the consistency level of ctx.
func (s *Store) reader(ctx context.Context) readFunc {
	if GetConsistencyLevel(ctx) == EventualConsistency {
		return s.db.QueryFromReplica
	}

	return s.db.Query
}

// Option defines a functional option for configuring the Store.
type Option func(*Store) error

// WithDialect sets the SQL dialect. Only stores created from a sql.DB or sqlx.DB accept DialectSQLite.
func WithDialect(dialect Dialect) Option {
	return func(s *Store) error {
		switch dialect {
		case DialectPostgres, DialectSQLite:
			s.dialect = dialect
			return nil
		default:
			return errors.Join(ErrUnsupportedDialect, fmt.Errorf("dialect %q", dialect))
		}
	}
}

// WithTablePrefix prefixes all table names, e.g. for running several catalogs in one schema.
func WithTablePrefix(prefix string) Option {
	return func(s *Store) error {
		s.tablePrefix = prefix
		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: operation summaries, dispatched events, concurrency conflicts (production-safe)
// Warn level: non-critical issues like rollback or cleanup failures
// Error level: failures that abort an operation.
func WithLogger(logger Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, which receives trace correlation from the context.
// If both loggers are configured, the contextual logger is used.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// It receives load/save/fetch durations, dispatched event counts, concurrency conflicts, and database errors.
func WithMetrics(collector MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store. Every operation runs in its own span.
func WithTracing(collector TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}

// Interface aliases, so that callers configuring the Store need not import the catalog package for them.
type (
	Logger                     = catalog.Logger
	ContextualLogger           = catalog.ContextualLogger
	MetricsCollector           = catalog.MetricsCollector
	ContextualMetricsCollector = catalog.ContextualMetricsCollector
	TracingCollector           = catalog.TracingCollector
	SpanContext                = catalog.SpanContext
)
