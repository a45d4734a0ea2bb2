package listing_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
	"github.com/AntonStoeckl/book-catalog-go/catalog/listing"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func Test_ProjectBook_UsesCachedFields(t *testing.T) {
	// arrange
	book := catalog.RestoreBook(catalog.BookState{
		ID:                  3,
		Title:               "Clean Code",
		PublishedOn:         now,
		OrgPrice:            4000,
		ActualPrice:         3000,
		PromotionalText:     "Sale",
		AuthorsOrdered:      "Robert C. Martin",
		ReviewsCount:        2,
		ReviewsAverageVotes: 4.5,
		TagsLink:            catalog.LoadedCollection(catalog.TagLink{TagID: "Programming"}),
	})

	// act
	row := listing.ProjectBook(book)

	// assert
	assert.Equal(t, catalog.BookID(3), row.BookID)
	assert.Equal(t, catalog.Price(3000), row.ActualPrice)
	require.NotNil(t, row.PromotionalText)
	assert.Equal(t, "Sale", *row.PromotionalText)
	require.NotNil(t, row.ReviewsAverageVotes)
	assert.InDelta(t, 4.5, *row.ReviewsAverageVotes, 1e-12)
	assert.Equal(t, []catalog.TagID{"Programming"}, row.TagIDs)
}

func Test_ProjectBook_NullAverage_WhenNoReviews(t *testing.T) {
	book := catalog.RestoreBook(catalog.BookState{ID: 1, OrgPrice: 10, ActualPrice: 10})

	row := listing.ProjectBook(book)

	assert.Nil(t, row.ReviewsAverageVotes)
	assert.Nil(t, row.PromotionalText)
	assert.Empty(t, row.TagIDs)
}

func Test_ProjectBooks_SkipsSoftDeleted(t *testing.T) {
	books := []*catalog.Book{
		catalog.RestoreBook(catalog.BookState{ID: 1}),
		catalog.RestoreBook(catalog.BookState{ID: 2, SoftDeleted: true}),
		catalog.RestoreBook(catalog.BookState{ID: 3}),
	}

	rows := listing.ProjectBooks(books)

	require.Len(t, rows, 2)
	assert.Equal(t, catalog.BookID(1), rows[0].BookID)
	assert.Equal(t, catalog.BookID(3), rows[1].BookID)
}

func Test_BuildFilter(t *testing.T) {
	tests := []struct {
		name     string
		kind     listing.FilterKind
		value    string
		expected []catalog.BookID
		err      error
	}{
		{name: "no_filter", kind: listing.NoFilter, value: "anything", expected: []catalog.BookID{1, 2, 3, 4, 5}},
		{name: "empty_value_is_identity", kind: listing.FilterByVotes, value: "  ", expected: []catalog.BookID{1, 2, 3, 4, 5}},
		{name: "votes_strictly_greater", kind: listing.FilterByVotes, value: "3", expected: []catalog.BookID{1, 3}},
		{name: "votes_excludes_null_average", kind: listing.FilterByVotes, value: "-1", expected: []catalog.BookID{1, 2, 3}},
		{name: "tag_exact_match", kind: listing.FilterByTags, value: "Go", expected: []catalog.BookID{1, 4}},
		{name: "tag_is_case_sensitive", kind: listing.FilterByTags, value: "go", expected: []catalog.BookID{}},
		{name: "year_excludes_future_books", kind: listing.FilterByPublicationYear, value: "2025", expected: []catalog.BookID{3}},
		{name: "year_in_the_past", kind: listing.FilterByPublicationYear, value: "2020", expected: []catalog.BookID{1, 2}},
		{name: "coming_soon", kind: listing.FilterByPublicationYear, value: listing.ComingSoon, expected: []catalog.BookID{4, 5}},
		{name: "malformed_votes", kind: listing.FilterByVotes, value: "four", err: listing.ErrMalformedFilterValue},
		{name: "malformed_year", kind: listing.FilterByPublicationYear, value: "20x5", err: listing.ErrMalformedFilterValue},
		{name: "unknown_kind", kind: listing.FilterKind(42), value: "1", err: listing.ErrUnknownFilter},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// act
			filter, err := listing.BuildFilter(tc.kind, tc.value, now)

			// assert
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, ids(listing.FilterRows(fixtureRows(), filter)))
		})
	}
}

func Test_SortRows(t *testing.T) {
	tests := []struct {
		name     string
		order    listing.OrderBy
		expected []catalog.BookID
	}{
		{name: "simple_order_newest_first", order: listing.SimpleOrder, expected: []catalog.BookID{5, 4, 3, 2, 1}},
		{name: "votes_null_last", order: listing.OrderByVotes, expected: []catalog.BookID{3, 1, 2, 4, 5}},
		{name: "publication_date_latest_first", order: listing.OrderByPublicationDate, expected: []catalog.BookID{5, 4, 3, 1, 2}},
		{name: "price_lowest_first_tie_by_id", order: listing.OrderByPriceLowestFirst, expected: []catalog.BookID{2, 4, 1, 3, 5}},
		{name: "price_highest_first_tie_by_id", order: listing.OrderByPriceHighestFirst, expected: []catalog.BookID{5, 1, 3, 2, 4}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sorted, err := listing.SortRows(fixtureRows(), tc.order)

			require.NoError(t, err)
			assert.Equal(t, tc.expected, ids(sorted))
		})
	}
}

func Test_SortRows_Fails_WhenOrderIsUnknown(t *testing.T) {
	_, err := listing.SortRows(fixtureRows(), listing.OrderBy(99))

	assert.ErrorIs(t, err, listing.ErrUnknownOrder)
}

func Test_ClampPage(t *testing.T) {
	tests := []struct {
		name      string
		pageNum   int
		pageSize  int
		totalRows int
		expected  listing.PageInfo
	}{
		{name: "first_page", pageNum: 1, pageSize: 2, totalRows: 5, expected: listing.PageInfo{PageNum: 1, PageSize: 2, TotalRows: 5, TotalPages: 3}},
		{name: "beyond_last_page", pageNum: 9, pageSize: 2, totalRows: 5, expected: listing.PageInfo{PageNum: 3, PageSize: 2, TotalRows: 5, TotalPages: 3}},
		{name: "below_first_page", pageNum: -3, pageSize: 2, totalRows: 5, expected: listing.PageInfo{PageNum: 1, PageSize: 2, TotalRows: 5, TotalPages: 3}},
		{name: "zero_rows", pageNum: 4, pageSize: 2, totalRows: 0, expected: listing.PageInfo{PageNum: 1, PageSize: 2, TotalRows: 0, TotalPages: 1}},
		{name: "default_page_size", pageNum: 1, pageSize: 0, totalRows: 25, expected: listing.PageInfo{PageNum: 1, PageSize: 10, TotalRows: 25, TotalPages: 3}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, listing.ClampPage(tc.pageNum, tc.pageSize, tc.totalRows))
		})
	}
}

func Test_InMemorySource_Fetch(t *testing.T) {
	// arrange
	source := listing.NewInMemorySource(fixtureRows()...)
	filter, err := listing.BuildFilter(listing.FilterByVotes, "0", now)
	require.NoError(t, err)

	// act
	page, err := source.Fetch(
		context.Background(),
		listing.BuildListQuery().FilteredBy(filter).OrderedBy(listing.OrderByVotes).Page(7, 2),
	)

	// assert: beyond the last page yields the last page, not an empty one
	require.NoError(t, err)
	assert.Equal(t, listing.PageInfo{PageNum: 2, PageSize: 2, TotalRows: 3, TotalPages: 2}, page.Info)
	assert.Equal(t, []catalog.BookID{2}, ids(page.Rows))
}

func Test_InMemorySource_Fetch_EmptySource(t *testing.T) {
	source := listing.NewInMemorySource()

	page, err := source.Fetch(context.Background(), listing.BuildListQuery().Unfiltered().OrderedBy(listing.SimpleOrder).Page(3, 10))

	require.NoError(t, err)
	assert.Empty(t, page.Rows)
	assert.Equal(t, listing.PageInfo{PageNum: 1, PageSize: 10, TotalRows: 0, TotalPages: 1}, page.Info)
}

func Test_InMemorySource_Fetch_ReturnsNoRows_WhenContextIsCanceled(t *testing.T) {
	source := listing.NewInMemorySource(fixtureRows()...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page, err := source.Fetch(ctx, listing.BuildListQuery().Unfiltered().OrderedBy(listing.SimpleOrder).Page(1, 10))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, page.Rows)
}

func Test_DisplayNames(t *testing.T) {
	assert.Equal(t, "All", listing.NoFilter.DisplayName())
	assert.Equal(t, "By Year published...", listing.FilterByPublicationYear.DisplayName())
	assert.Equal(t, "sort by...", listing.SimpleOrder.DisplayName())
	assert.Equal(t, "Votes ↑", listing.OrderByVotes.DisplayName())
	assert.Len(t, listing.Orders(), 5)
	assert.Len(t, listing.FilterKinds(), 4)
}

// fixtureRows:
//
//	id  published    price  avg   tags
//	1   2020-03-01   20     4.0   Go
//	2   2020-01-01   10     2.0   -
//	3   2025-02-01   20     4.5   DDD
//	4   2025-09-01   10     nil   Go
//	5   2026-01-01   30     nil   -
func fixtureRows() []listing.BookListRow {
	return []listing.BookListRow{
		row(1, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), 20, ptr(4.0), "Go"),
		row(2, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 10, ptr(2.0)),
		row(3, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), 20, ptr(4.5), "DDD"),
		row(4, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), 10, nil, "Go"),
		row(5, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 30, nil),
	}
}

func row(id catalog.BookID, publishedOn time.Time, price catalog.Price, avg *float64, tags ...catalog.TagID) listing.BookListRow {
	count := 0
	if avg != nil {
		count = 1
	}

	return listing.BookListRow{
		BookID:              id,
		Title:               uuid.NewString(),
		PublishedOn:         publishedOn,
		OrgPrice:            price,
		ActualPrice:         price,
		AuthorsOrdered:      "Some Author",
		ReviewsCount:        count,
		ReviewsAverageVotes: avg,
		TagIDs:              append([]catalog.TagID{}, tags...),
	}
}

func ptr(f float64) *float64 {
	return &f
}

func ids(rows []listing.BookListRow) []catalog.BookID {
	result := make([]catalog.BookID, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.BookID)
	}

	return result
}
