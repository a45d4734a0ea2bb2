package removereview

import (
	"errors"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
)

const commandType = "RemoveReview"

// ErrReviewNotFound is returned when the book has no review with the requested ID.
var ErrReviewNotFound = errors.New("review not found")

// Command represents the intent to remove a review from a book.
type Command struct {
	BookID   catalog.BookID
	ReviewID catalog.ReviewID
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID catalog.BookID, reviewID catalog.ReviewID) Command {
	return Command{
		BookID:   bookID,
		ReviewID: reviewID,
	}
}
