package softdeletebook_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/book-catalog-go/app/features/command/softdeletebook"
	"github.com/AntonStoeckl/book-catalog-go/catalog/listing"
	. "github.com/AntonStoeckl/book-catalog-go/testutil/helper" //nolint:revive
)

func Test_CommandHandler_Handle_When_BookIsDeletedAndRestored(t *testing.T) {
	// setup
	ctx := context.Background()
	store := NewSQLiteStore(t)
	handler := softdeletebook.NewCommandHandler(store)
	query := listing.BuildListQuery().Unfiltered().OrderedBy(listing.SimpleOrder).Page(1, 10)

	// arrange
	book := GivenPersistedBook(t, store, NewBookFixture("Middlemarch"))
	GivenPersistedBook(t, store, NewBookFixture("Persuasion"))

	// act
	deleteResult, deleteErr := handler.Handle(ctx, softdeletebook.BuildCommand(book.ID()))
	pageWhileDeleted, fetchErr := store.Fetch(ctx, query)
	require.NoError(t, fetchErr)
	restoreResult, restoreErr := handler.Handle(ctx, softdeletebook.BuildUndeleteCommand(book.ID()))

	// assert
	require.NoError(t, deleteErr)
	require.NoError(t, restoreErr)
	assert.False(t, deleteResult.Idempotent)
	assert.False(t, restoreResult.Idempotent)

	assert.Equal(t, 1, pageWhileDeleted.Info.TotalRows)
	assert.Equal(t, "Persuasion", pageWhileDeleted.Rows[0].Title)

	pageAfterRestore, err := store.Fetch(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, 2, pageAfterRestore.Info.TotalRows)
}

func Test_CommandHandler_Handle_When_BookIsAlreadyDeleted(t *testing.T) {
	// setup
	ctx := context.Background()
	store := NewSQLiteStore(t)
	handler := softdeletebook.NewCommandHandler(store)

	// arrange
	book := GivenPersistedBook(t, store, NewBookFixture("Middlemarch").Deleted())

	// act
	result, err := handler.Handle(ctx, softdeletebook.BuildCommand(book.ID()))

	// assert
	require.NoError(t, err)
	assert.True(t, result.Idempotent)

	reloaded, err := store.Load(ctx, book.ID())
	require.NoError(t, err)
	assert.True(t, reloaded.SoftDeleted())
}
