package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/book-catalog-go/app/features/command/removereview"
	"github.com/AntonStoeckl/book-catalog-go/app/features/query/listbooks"
	"github.com/AntonStoeckl/book-catalog-go/catalog"
	"github.com/AntonStoeckl/book-catalog-go/catalog/listing"
)

func givenSQLiteEnvironment(t *testing.T) {
	t.Setenv("BOOKCATALOG_DB_ADAPTER", "sqlite")
	t.Setenv("BOOKCATALOG_SQLITE_DSN", filepath.Join(t.TempDir(), "catalog.db"))
	t.Setenv("BOOKCATALOG_LOG_LEVEL", "error")
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout bytes.Buffer
	err := run(context.Background(), args, &stdout, io.Discard)

	return stdout.String(), err
}

func listBooks(t *testing.T, args ...string) listbooks.BookList {
	t.Helper()

	out, err := runCLI(t, append([]string{"list"}, args...)...)
	require.NoError(t, err)

	var bookList listbooks.BookList
	require.NoError(t, jsonAPI.UnmarshalFromString(out, &bookList))

	return bookList
}

func findBook(t *testing.T, title string) listing.BookListRow {
	t.Helper()

	for _, row := range listBooks(t, "-size", "50").Books {
		if row.Title == title {
			return row
		}
	}

	require.Failf(t, "book not listed", "title %q", title)

	return listing.BookListRow{}
}

func Test_CLI_When_Seeded_Then_Listing_Shows_Visible_Books(t *testing.T) {
	// setup
	givenSQLiteEnvironment(t)

	// arrange
	_, err := runCLI(t, "schema")
	require.NoError(t, err)
	_, err = runCLI(t, "seed")
	require.NoError(t, err)

	// act
	all := listBooks(t, "-sort", "1")
	comingSoon := listBooks(t, "-filter", "3", "-value", "Coming Soon")

	// assert
	assert.Equal(t, 4, all.Page.TotalRows)
	assert.Equal(t, "Votes ↑", all.OrderName)
	assert.Equal(t, "Refactoring", all.Books[0].Title)
	require.Len(t, comingSoon.Books, 1)
	assert.Equal(t, "Designing Data-Intensive Applications", comingSoon.Books[0].Title)
}

func Test_CLI_When_Reviewing_And_Promoting_Then_Listing_Reflects_It(t *testing.T) {
	// setup
	givenSQLiteEnvironment(t)
	_, err := runCLI(t, "schema")
	require.NoError(t, err)
	_, err = runCLI(t, "seed")
	require.NoError(t, err)

	learningGo := listBooks(t, "-filter", "2", "-value", "Go").Books[0]
	bookID := strconv.FormatInt(learningGo.BookID, 10)

	// act
	_, reviewErr := runCLI(t, "review", "-book", bookID, "-stars", "4", "-voter", "tester")
	promoteOut, promoteErr := runCLI(t, "promote", "-book", bookID, "-cents", "1999", "-text", "Half price")

	// assert
	require.NoError(t, reviewErr)
	require.NoError(t, promoteErr)
	assert.Equal(t, "The book's new price is $19.99.\n", promoteOut)

	updated := listBooks(t, "-filter", "2", "-value", "Go").Books[0]
	assert.Equal(t, 1, updated.ReviewsCount)
	assert.Equal(t, catalog.PriceFromCents(1999), updated.ActualPrice)
	require.NotNil(t, updated.PromotionalText)
	assert.Equal(t, "Half price", *updated.PromotionalText)
}

func Test_CLI_When_Soft_Deleting_Then_Book_Is_Hidden_Until_Restored(t *testing.T) {
	// setup
	givenSQLiteEnvironment(t)
	_, err := runCLI(t, "schema")
	require.NoError(t, err)
	_, err = runCLI(t, "seed")
	require.NoError(t, err)

	bookID := strconv.FormatInt(listBooks(t, "-filter", "2", "-value", "Go").Books[0].BookID, 10)

	// act
	deleteOut, deleteErr := runCLI(t, "delete", "-book", bookID)
	hidden := listBooks(t, "-filter", "2", "-value", "Go")
	_, restoreErr := runCLI(t, "delete", "-book", bookID, "-undo")

	// assert
	require.NoError(t, deleteErr)
	require.NoError(t, restoreErr)
	assert.Equal(t, "book "+bookID+" updated\n", deleteOut)
	assert.Empty(t, hidden.Books)
	assert.Len(t, listBooks(t, "-filter", "2", "-value", "Go").Books, 1)
}

func Test_CLI_When_Input_Is_Invalid_Then_It_Fails(t *testing.T) {
	// setup
	givenSQLiteEnvironment(t)
	_, err := runCLI(t, "schema")
	require.NoError(t, err)

	testCases := []struct {
		name      string
		args      []string
		expectErr error
	}{
		{name: "no subcommand", args: nil, expectErr: errUsage},
		{name: "unknown subcommand", args: []string{"export"}, expectErr: errUsage},
		{name: "review without book", args: []string{"review", "-stars", "3"}, expectErr: errMissingBookID},
		{name: "review of unknown book", args: []string{"review", "-book", "999", "-stars", "3"}, expectErr: catalog.ErrBookNotFound},
		{name: "unknown order", args: []string{"list", "-sort", "9"}, expectErr: listing.ErrUnknownOrder},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, runErr := runCLI(t, tc.args...)

			// assert
			assert.ErrorIs(t, runErr, tc.expectErr)
		})
	}
}

func Test_CLI_When_Undoing_Reviews_Promotions_And_Dates_Then_Listing_Reflects_It(t *testing.T) {
	// setup
	givenSQLiteEnvironment(t)
	_, err := runCLI(t, "schema")
	require.NoError(t, err)
	_, err = runCLI(t, "seed")
	require.NoError(t, err)

	refactoringID := strconv.FormatInt(findBook(t, "Refactoring").BookID, 10)
	dddID := strconv.FormatInt(findBook(t, "Domain-Driven Design").BookID, 10)
	learningGoID := strconv.FormatInt(findBook(t, "Learning Go").BookID, 10)

	// act
	unreviewOut, unreviewErr := runCLI(t, "unreview", "-book", refactoringID, "-review", "1")
	unpromoteOut, unpromoteErr := runCLI(t, "unpromote", "-book", dddID)
	unpromoteAgainOut, unpromoteAgainErr := runCLI(t, "unpromote", "-book", dddID)
	publishOut, publishErr := runCLI(t, "publish", "-book", learningGoID, "-date", "2099-01-01")

	// assert
	require.NoError(t, unreviewErr)
	require.NoError(t, unpromoteErr)
	require.NoError(t, unpromoteAgainErr)
	require.NoError(t, publishErr)
	assert.Equal(t, "review 1 removed from book "+refactoringID+"\n", unreviewOut)
	assert.Equal(t, "book "+dddID+" updated\n", unpromoteOut)
	assert.Equal(t, "book "+dddID+" unchanged\n", unpromoteAgainOut)
	assert.Equal(t, "book "+learningGoID+" updated\n", publishOut)

	refactoring := findBook(t, "Refactoring")
	assert.Equal(t, 2, refactoring.ReviewsCount)
	require.NotNil(t, refactoring.ReviewsAverageVotes)
	assert.InDelta(t, 4.5, *refactoring.ReviewsAverageVotes, 1e-9)

	ddd := findBook(t, "Domain-Driven Design")
	assert.Nil(t, ddd.PromotionalText)
	assert.Equal(t, ddd.OrgPrice, ddd.ActualPrice)

	assert.Len(t, listBooks(t, "-filter", "3", "-value", "Coming Soon").Books, 2)
}

func Test_CLI_When_Undo_Input_Is_Invalid_Then_It_Fails(t *testing.T) {
	// setup
	givenSQLiteEnvironment(t)
	_, err := runCLI(t, "schema")
	require.NoError(t, err)
	_, err = runCLI(t, "seed")
	require.NoError(t, err)

	learningGoID := strconv.FormatInt(findBook(t, "Learning Go").BookID, 10)

	testCases := []struct {
		name      string
		args      []string
		expectErr error
	}{
		{name: "unreview without review", args: []string{"unreview", "-book", learningGoID}, expectErr: errMissingReviewID},
		{name: "unreview of unknown review", args: []string{"unreview", "-book", learningGoID, "-review", "1"}, expectErr: removereview.ErrReviewNotFound},
		{name: "unpromote without book", args: []string{"unpromote"}, expectErr: errMissingBookID},
		{name: "publish of unknown book", args: []string{"publish", "-book", "999", "-date", "2030-05-01"}, expectErr: catalog.ErrBookNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, runErr := runCLI(t, tc.args...)

			// assert
			assert.ErrorIs(t, runErr, tc.expectErr)
		})
	}

	_, dateErr := runCLI(t, "publish", "-book", learningGoID, "-date", "next spring")
	assert.ErrorContains(t, dateErr, "-date")
}
