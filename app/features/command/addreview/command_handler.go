package addreview

import (
	"context"

	"github.com/AntonStoeckl/book-catalog-go/app/shared/shell"
	"github.com/AntonStoeckl/book-catalog-go/catalog"
	"github.com/AntonStoeckl/book-catalog-go/catalog/sqlengine"
)

// BookStore defines the interface needed by the CommandHandler for loading and saving a Book.
type BookStore interface {
	Load(ctx context.Context, bookID catalog.BookID, includes ...sqlengine.Include) (*catalog.Book, error)
	Save(ctx context.Context, book *catalog.Book) error
}

// CommandHandler orchestrates the workflow: Load → AddReview → Save.
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

// Handle adds the review, retrying on concurrency conflicts.
// An out-of-range rating is returned as catalog.ValidationErrors, an unknown book as catalog.ErrBookNotFound.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return h.executeCommand(retryCtx, command)
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	return shell.NewSuccessResult(retryMetrics).WithBookID(command.BookID), nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) error {
	// The read-check-write cycle must see its own writes, never a lagging replica.
	ctx = sqlengine.WithStrongConsistency(ctx)

	book, err := h.store.Load(ctx, command.BookID, sqlengine.IncludeReviews)
	if err != nil {
		return err
	}

	if err = book.AddReview(command.NumStars, command.Comment, command.VoterName); err != nil {
		return err
	}

	return h.store.Save(ctx, book)
}
