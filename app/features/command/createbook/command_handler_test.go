package createbook_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/book-catalog-go/app/features/command/createbook"
	"github.com/AntonStoeckl/book-catalog-go/catalog"
	"github.com/AntonStoeckl/book-catalog-go/catalog/listing"
	"github.com/AntonStoeckl/book-catalog-go/catalog/sqlengine"
	. "github.com/AntonStoeckl/book-catalog-go/testutil/helper" //nolint:revive
)

func Test_CommandHandler_Handle_When_InputIsValid(t *testing.T) {
	// setup
	ctx := context.Background()
	store := NewSQLiteStore(t)
	handler := createbook.NewCommandHandler(store)

	// arrange
	publishedOn := time.Date(2018, 5, 1, 0, 0, 0, 0, time.UTC)
	command := createbook.BuildCommand(
		"Refactoring",
		"Improving the design of existing code",
		publishedOn,
		time.Date(2024, 1, 2, 3, 4, 5, 999, time.UTC),
		"Addison-Wesley",
		catalog.PriceFromCents(4999),
		"https://example.com/refactoring.png",
		GivenAuthors(t, "Martin Fowler", "Kent Beck"),
		GivenTags("programming", "design")...,
	)

	// act
	result, err := handler.Handle(ctx, command)

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)
	assert.Equal(t, 1, result.RetryAttempts)
	assert.NotZero(t, result.BookID)

	book, err := store.Load(ctx, result.BookID, sqlengine.IncludeAll)
	require.NoError(t, err)
	assert.Equal(t, "Refactoring", book.Title())
	assert.Equal(t, "Martin Fowler, Kent Beck", book.AuthorsOrdered())
	assert.Equal(t, catalog.PriceFromCents(4999), book.ActualPrice())
	assert.True(t, book.PublishedOn().Equal(publishedOn))
	assert.True(t, book.LastSignificantChange().Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.Equal(t, 0, book.ReviewsCount())
	assert.Len(t, book.TagsLink().Items(), 2)
}

func Test_CommandHandler_Handle_When_InputIsInvalid(t *testing.T) {
	// setup
	ctx := context.Background()
	store := NewSQLiteStore(t)
	handler := createbook.NewCommandHandler(store)

	// arrange
	command := createbook.BuildCommand(
		"   ",
		"",
		time.Date(2018, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Now(),
		"",
		catalog.PriceFromCents(100),
		"",
		nil,
	)

	// act
	result, err := handler.Handle(ctx, command)

	// assert
	require.ErrorIs(t, err, catalog.ErrValidationFailed)

	var validationErrors catalog.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
	assert.Equal(t, []string{catalog.FieldNameTitle, catalog.FieldNameAuthors}, validationErrors.Fields())
	assert.Equal(t, 1, result.RetryAttempts, "validation errors must not be retried")
	assert.Zero(t, result.BookID)

	page, fetchErr := store.Fetch(ctx, listing.BuildListQuery().Unfiltered().OrderedBy(listing.SimpleOrder).Page(1, 10))
	require.NoError(t, fetchErr)
	assert.Zero(t, page.Info.TotalRows)
}
