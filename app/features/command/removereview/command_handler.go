package removereview

import (
	"context"
	"errors"
	"fmt"

	"github.com/AntonStoeckl/book-catalog-go/app/shared/shell"
	"github.com/AntonStoeckl/book-catalog-go/catalog"
	"github.com/AntonStoeckl/book-catalog-go/catalog/sqlengine"
)

// BookStore defines the interface needed by the CommandHandler for loading and saving a Book.
type BookStore interface {
	Load(ctx context.Context, bookID catalog.BookID, includes ...sqlengine.Include) (*catalog.Book, error)
	Save(ctx context.Context, book *catalog.Book) error
}

// CommandHandler orchestrates the workflow: Load → RemoveReview → Save.
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

// Handle removes the review, retrying on concurrency conflicts.
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
	ctx = sqlengine.WithStrongConsistency(ctx)

	book, err := h.store.Load(ctx, command.BookID, sqlengine.IncludeReviews)
	if err != nil {
		return err
	}

	if !book.HasReview(command.ReviewID) {
		return errors.Join(ErrReviewNotFound, fmt.Errorf("book %d has no review %d", command.BookID, command.ReviewID))
	}

	book.RemoveReview(command.ReviewID)

	return h.store.Save(ctx, book)
}
