package sqlengine_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
	"github.com/AntonStoeckl/book-catalog-go/catalog/listing"
	"github.com/AntonStoeckl/book-catalog-go/catalog/sqlengine"
	. "github.com/AntonStoeckl/book-catalog-go/testutil/helper" //nolint:revive
)

var fetchNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// givenTheListingCatalog persists a mix of books and returns the list rows an in-memory projection yields.
func givenTheListingCatalog(t *testing.T, store *sqlengine.Store) []listing.BookListRow {
	t.Helper()

	fixtures := []BookFixture{
		NewBookFixture("Alpha").PublishedAt(day(2019, time.March, 3)).Priced(1500).WithReviews(5, 4).TaggedWith("classics"),
		NewBookFixture("Bravo").PublishedAt(day(2023, time.March, 1)).Priced(900).WithReviews(3).TaggedWith("architecture", "classics"),
		NewBookFixture("Charlie").PublishedAt(day(2023, time.November, 20)).Priced(900),
		NewBookFixture("Delta").PublishedAt(day(2024, time.May, 5)).Priced(2500).WithReviews(5).WithPromotion(2000, "Spring deal"),
		NewBookFixture("Echo").PublishedAt(day(2025, time.January, 10)).Priced(1200).WithReviews(4, 5).TaggedWith("upcoming"),
		NewBookFixture("Foxtrot").PublishedAt(day(2022, time.August, 8)).Priced(3000).WithReviews(5).Deleted(),
		NewBookFixture("Golf").PublishedAt(day(2024, time.July, 1)).Priced(1200).WithReviews(2, 2, 1),
	}

	ctx := context.Background()
	books := make([]*catalog.Book, 0, len(fixtures))
	for _, f := range fixtures {
		persisted := GivenPersistedBook(t, store, f)
		loaded, err := store.Load(ctx, persisted.ID(), sqlengine.IncludeTags)
		require.NoError(t, err, "error in arranging test data")
		books = append(books, loaded)
	}

	return listing.ProjectBooks(books)
}

func Test_Fetch_MatchesTheInMemoryPipeline(t *testing.T) {
	// setup
	ctx := context.Background()
	store := NewSQLiteStore(t)

	// arrange
	source := listing.NewInMemorySource(givenTheListingCatalog(t, store)...)

	filters := []struct {
		kind  listing.FilterKind
		value string
	}{
		{listing.NoFilter, ""},
		{listing.FilterByVotes, "0"},
		{listing.FilterByVotes, "4"},
		{listing.FilterByTags, "classics"},
		{listing.FilterByTags, "unknown"},
		{listing.FilterByPublicationYear, "2023"},
		{listing.FilterByPublicationYear, "2024"},
		{listing.FilterByPublicationYear, listing.ComingSoon},
	}

	for _, f := range filters {
		filter, err := listing.BuildFilter(f.kind, f.value, fetchNow)
		require.NoError(t, err)

		for _, order := range listing.Orders() {
			for _, pageNum := range []int{1, 2, 99} {
				name := fmt.Sprintf("%s %s/%s/page %d", f.kind.DisplayName(), f.value, order.DisplayName(), pageNum)

				t.Run(name, func(t *testing.T) {
					query := listing.BuildListQuery().FilteredBy(filter).OrderedBy(order).Page(pageNum, 2)

					// act
					expected, expectedErr := source.Fetch(ctx, query)
					actual, actualErr := store.Fetch(ctx, query)

					// assert
					require.NoError(t, expectedErr)
					require.NoError(t, actualErr)
					assert.Equal(t, expected, actual)
				})
			}
		}
	}
}

func Test_Fetch_ExcludesSoftDeletedBooks(t *testing.T) {
	// setup
	ctx := context.Background()
	store := NewSQLiteStore(t)

	// arrange
	GivenPersistedBook(t, store, NewBookFixture("Visible"))
	GivenPersistedBook(t, store, NewBookFixture("Hidden").Deleted())

	// act
	page, err := store.Fetch(ctx, listing.BuildListQuery().Unfiltered().OrderedBy(listing.SimpleOrder).Page(1, 10))

	// assert
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "Visible", page.Rows[0].Title)
	assert.Equal(t, 1, page.Info.TotalRows)
}

func Test_Fetch_ProjectsTheListRow(t *testing.T) {
	// setup
	ctx := context.Background()
	store := NewSQLiteStore(t)

	// arrange
	withReviews := GivenPersistedBook(t, store, NewBookFixture("Reviewed").
		WrittenBy("Ann", "Ben").
		WithReviews(5, 2).
		WithPromotion(700, "Deal").
		TaggedWith("a", "b"))
	plain := GivenPersistedBook(t, store, NewBookFixture("Plain"))

	// act
	page, err := store.Fetch(ctx, listing.BuildListQuery().Unfiltered().OrderedBy(listing.SimpleOrder).Page(1, 10))

	// assert
	require.NoError(t, err)
	require.Len(t, page.Rows, 2)

	newest, older := page.Rows[0], page.Rows[1]
	assert.Equal(t, plain.ID(), newest.BookID, "the simple order lists the newest book first")
	assert.Nil(t, newest.PromotionalText)
	assert.Nil(t, newest.ReviewsAverageVotes, "no reviews means no average")
	assert.Equal(t, []catalog.TagID{}, newest.TagIDs)

	assert.Equal(t, withReviews.ID(), older.BookID)
	assert.Equal(t, "Ann, Ben", older.AuthorsOrdered)
	require.NotNil(t, older.PromotionalText)
	assert.Equal(t, "Deal", *older.PromotionalText)
	assert.Equal(t, catalog.PriceFromCents(1000), older.OrgPrice)
	assert.Equal(t, catalog.PriceFromCents(700), older.ActualPrice)
	assert.Equal(t, 2, older.ReviewsCount)
	require.NotNil(t, older.ReviewsAverageVotes)
	assert.InDelta(t, 3.5, *older.ReviewsAverageVotes, 1e-9)
	assert.Equal(t, []catalog.TagID{"a", "b"}, older.TagIDs)
}

func Test_Fetch_ClampsThePage(t *testing.T) {
	// setup
	ctx := context.Background()
	store := NewSQLiteStore(t)

	// arrange
	for i := range 5 {
		GivenPersistedBook(t, store, NewBookFixture(fmt.Sprintf("Book %d", i)))
	}

	// act
	beyond, err := store.Fetch(ctx, listing.BuildListQuery().Unfiltered().OrderedBy(listing.SimpleOrder).Page(7, 2))
	require.NoError(t, err)
	before, err := store.Fetch(ctx, listing.BuildListQuery().Unfiltered().OrderedBy(listing.SimpleOrder).Page(-3, 0))
	require.NoError(t, err)

	// assert
	assert.Equal(t, listing.PageInfo{PageNum: 3, PageSize: 2, TotalRows: 5, TotalPages: 3}, beyond.Info)
	assert.Len(t, beyond.Rows, 1, "a page beyond the end yields the last page")
	assert.Equal(t, listing.PageInfo{PageNum: 1, PageSize: listing.DefaultPageSize, TotalRows: 5, TotalPages: 1}, before.Info)
	assert.Len(t, before.Rows, 5)
}

func Test_Fetch_When_TheCatalogIsEmpty(t *testing.T) {
	// setup
	store := NewSQLiteStore(t)

	// act
	page, err := store.Fetch(context.Background(), listing.BuildListQuery().Unfiltered().OrderedBy(listing.OrderByVotes).Page(1, 10))

	// assert
	require.NoError(t, err)
	assert.Empty(t, page.Rows)
	assert.Equal(t, listing.PageInfo{PageNum: 1, PageSize: 10, TotalRows: 0, TotalPages: 1}, page.Info)
}

func Test_Fetch_When_TheOrderIsUnknown(t *testing.T) {
	// setup
	store := NewSQLiteStore(t)

	// act
	page, err := store.Fetch(context.Background(), listing.BuildListQuery().Unfiltered().OrderedBy(listing.OrderBy(42)).Page(1, 10))

	// assert
	assert.ErrorIs(t, err, listing.ErrUnknownOrder)
	assert.Empty(t, page.Rows)
}

func Test_Fetch_When_TheContextIsCanceled(t *testing.T) {
	// setup
	store := NewSQLiteStore(t)
	GivenPersistedBook(t, store, NewBookFixture("Alpha"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	page, err := store.Fetch(ctx, listing.BuildListQuery().Unfiltered().OrderedBy(listing.SimpleOrder).Page(1, 10))

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, sqlengine.ErrQueryingBooksFailed)
	assert.Empty(t, page.Rows)
	assert.Equal(t, listing.PageInfo{}, page.Info)
}

// commitOnCountLogger runs commit once, right after the store has executed its COUNT query.
type commitOnCountLogger struct {
	commit func()
	fired  bool
}

func (l *commitOnCountLogger) Debug(_ string, args ...any) {
	for _, arg := range args {
		if query, ok := arg.(string); ok && strings.Contains(query, "COUNT(") && !l.fired {
			l.fired = true
			l.commit()
		}
	}
}

func (l *commitOnCountLogger) Info(string, ...any) {}
func (l *commitOnCountLogger) Warn(string, ...any) {}
func (l *commitOnCountLogger) Error(string, ...any) {}

func openWALDatabase(t *testing.T, dsn string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err, "error opening sqlite in test setup")
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func Test_Fetch_When_ABookIsCommitted_BetweenTheCountAndThePage(t *testing.T) {
	// setup
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "catalog.db") + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	writer, err := sqlengine.NewStoreFromSQLDB(openWALDatabase(t, dsn), sqlengine.WithDialect(sqlengine.DialectSQLite))
	require.NoError(t, err)
	require.NoError(t, writer.CreateSchema(ctx))

	// arrange
	GivenPersistedBook(t, writer, NewBookFixture("Before"))

	logger := &commitOnCountLogger{commit: func() {
		GivenPersistedBook(t, writer, NewBookFixture("During"))
	}}

	reader, err := sqlengine.NewStoreFromSQLDB(
		openWALDatabase(t, dsn),
		sqlengine.WithDialect(sqlengine.DialectSQLite),
		sqlengine.WithLogger(logger),
	)
	require.NoError(t, err)

	// act
	page, err := reader.Fetch(ctx, listing.BuildListQuery().Unfiltered().OrderedBy(listing.SimpleOrder).Page(1, 10))

	// assert
	require.NoError(t, err)
	require.True(t, logger.fired, "the concurrent commit must have happened during the fetch")
	assert.Len(t, page.Rows, page.Info.TotalRows, "the page info must describe the returned rows")

	after, err := reader.Fetch(ctx, listing.BuildListQuery().Unfiltered().OrderedBy(listing.SimpleOrder).Page(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 2, after.Info.TotalRows)
	assert.Len(t, after.Rows, 2)
}
