package removepromotion

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

// CommandHandler orchestrates the workflow: Load → RemovePromotion → Save.
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

// Handle removes the promotion.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	var isIdempotent bool

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		idempotent, execErr := h.executeCommand(retryCtx, command)
		isIdempotent = idempotent

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	if isIdempotent {
		return shell.NewIdempotentResult(retryMetrics).WithBookID(command.BookID), nil
	}

	return shell.NewSuccessResult(retryMetrics).WithBookID(command.BookID), nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (bool, error) {
	ctx = sqlengine.WithStrongConsistency(ctx)

	book, err := h.store.Load(ctx, command.BookID)
	if err != nil {
		return false, err
	}

	if !book.HasPromotion() {
		return true, nil
	}

	book.RemovePromotion()

	return false, h.store.Save(ctx, book)
}
