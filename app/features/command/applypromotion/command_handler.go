package applypromotion

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

// CommandHandler orchestrates the workflow: Load → ApplyPromotion → Save.
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

// Handle applies the promotion. On success the HandlerResult carries the message for the user,
// e.g. "The book's new price is $12.50.". A blank or too long text is returned as catalog.ValidationErrors.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	var (
		isIdempotent bool
		message      string
	)

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		idempotent, msg, execErr := h.executeCommand(retryCtx, command)
		isIdempotent = idempotent
		message = msg

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	if isIdempotent {
		return shell.NewIdempotentResult(retryMetrics).WithBookID(command.BookID).WithMessage(message), nil
	}

	return shell.NewSuccessResult(retryMetrics).WithBookID(command.BookID).WithMessage(message), nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (bool, string, error) {
	ctx = sqlengine.WithStrongConsistency(ctx)

	book, err := h.store.Load(ctx, command.BookID)
	if err != nil {
		return false, "", err
	}

	message, err := book.ApplyPromotion(command.ActualPrice, command.PromotionalText)
	if err != nil {
		return false, "", err
	}

	if book.DirtyFields().Empty() {
		return true, message, nil
	}

	return false, message, h.store.Save(ctx, book)
}
