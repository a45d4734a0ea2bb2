package createbook

import (
	"context"

	"github.com/AntonStoeckl/book-catalog-go/app/shared/shell"
	"github.com/AntonStoeckl/book-catalog-go/catalog"
)

// BookStore defines the interface needed by the CommandHandler to persist a new Book.
type BookStore interface {
	Save(ctx context.Context, book *catalog.Book) error
}

// CommandHandler validates and inserts a new Book.
// All observability concerns are handled by the external observable wrapper.
type CommandHandler struct {
	store        BookStore
	retryOptions []shell.RetryOption
}

// NewCommandHandler creates a new CommandHandler with the provided BookStore dependency.
func NewCommandHandler(store BookStore, retryOptions ...shell.RetryOption) CommandHandler {
	return CommandHandler{
		store:        store,
		retryOptions: retryOptions,
	}
}

// Handle builds the Book and saves it. Invalid input is returned as catalog.ValidationErrors
// and nothing is written. On success the HandlerResult carries the assigned BookID.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	var bookID catalog.BookID

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		book, createErr := catalog.CreateBook(
			command.Title,
			command.Description,
			command.PublishedOn,
			command.LastSignificantChange,
			command.Publisher,
			command.Price,
			command.ImageURL,
			command.Authors,
			command.Tags...,
		)
		if createErr != nil {
			return createErr
		}

		if saveErr := h.store.Save(retryCtx, book); saveErr != nil {
			return saveErr
		}

		bookID = book.ID()

		return nil
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	return shell.NewSuccessResult(retryMetrics).WithBookID(bookID), nil
}
