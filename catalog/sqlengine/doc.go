// Package sqlengine persists the catalog in a SQL database and runs the list query inside it.
//
// A Store implements the unit of work for a catalog.Book: Save dispatches the Book's pending events so that
// the stat handlers update the cached review statistics, and then writes the Book, its child rows, and the
// cached fields in one transaction. Every cached field has a version column; an UPDATE of a cached field
// only succeeds if the version still matches the one that was loaded, otherwise Save returns
// catalog.ErrConcurrencyConflict. Fetch implements listing.Source by translating the filter, order, and page
// window into SQL.
//
// Supported databases and drivers:
//   - Postgres via pgx (pgxpool.Pool), database/sql, or sqlx
//   - SQLite via database/sql or sqlx, e.g. with the modernc.org/sqlite driver
//
// SQL is generated with goqu, so the same code serves both dialects.
//
// Usage examples:
//
//	// Postgres
//	pool, _ := pgxpool.New(ctx, dsn)
//	store, _ := sqlengine.NewStoreFromPGXPool(pool, sqlengine.WithLogger(logger))
//
//	// SQLite
//	db, _ := sql.Open("sqlite", "catalog.db")
//	store, _ := sqlengine.NewStoreFromSQLDB(db, sqlengine.WithDialect(sqlengine.DialectSQLite))
//	_ = store.CreateSchema(ctx)
//
//	book, _ := store.Load(sqlengine.WithStrongConsistency(ctx), bookID, sqlengine.IncludeReviews)
//	_ = book.AddReview(5, "great", "Jon")
//	err := store.Save(ctx, book)
//
//	page, _ := store.Fetch(ctx, listing.BuildListQuery().Unfiltered().OrderedBy(listing.OrderByVotes).Page(1, 10))
package sqlengine
