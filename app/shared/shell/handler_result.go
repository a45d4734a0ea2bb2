package shell

import (
	"time"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
)

// HandlerResult is the outcome of a command handler execution.
// It carries the business outcome and the retry metadata without coupling the handler to an observability
// implementation.
type HandlerResult struct {
	// Idempotent is true if the command did not need to change anything, e.g. removing a promotion
	// from a book without one. This is a business outcome, not an error.
	Idempotent bool

	// RetryAttempts is the total number of attempts made (1 for no retries).
	RetryAttempts int

	// TotalRetryDelay is the time spent waiting in backoff delays, without the execution time.
	TotalRetryDelay time.Duration

	// LastErrorType is the type of the last error seen: "none", "concurrency_conflict", "context_canceled",
	// "context_deadline_exceeded", or "other".
	LastErrorType string

	// RetriesExhausted is true if all attempts failed with a retryable error.
	RetriesExhausted bool

	// BookID is the ID of the Book the command worked on, the assigned one for a created Book.
	BookID catalog.BookID

	// Message is a user facing text some commands produce, e.g. the new price of a promotion.
	Message string
}

// NewSuccessResult creates a HandlerResult for a command that changed the Book.
func NewSuccessResult(retryMetrics RetryMetrics) HandlerResult {
	return newHandlerResult(false, retryMetrics)
}

// NewIdempotentResult creates a HandlerResult for a command that needed no change.
func NewIdempotentResult(retryMetrics RetryMetrics) HandlerResult {
	return newHandlerResult(true, retryMetrics)
}

// NewErrorResult creates a HandlerResult for a failed command, keeping the retry metadata.
func NewErrorResult(retryMetrics RetryMetrics) HandlerResult {
	return newHandlerResult(false, retryMetrics)
}

func newHandlerResult(idempotent bool, retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		Idempotent:       idempotent,
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}

// WithBookID returns a copy of r carrying the Book's ID.
func (r HandlerResult) WithBookID(bookID catalog.BookID) HandlerResult {
	r.BookID = bookID
	return r
}

// WithMessage returns a copy of r carrying a message for the user.
func (r HandlerResult) WithMessage(message string) HandlerResult {
	r.Message = message
	return r
}
