package softdeletebook

import "github.com/AntonStoeckl/book-catalog-go/catalog"

const commandType = "SoftDeleteBook"

// Command represents the intent to hide a book from the listing, or to show it again.
type Command struct {
	BookID      catalog.BookID
	SoftDeleted bool
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a Command that soft-deletes the book.
func BuildCommand(bookID catalog.BookID) Command {
	return Command{BookID: bookID, SoftDeleted: true}
}

// BuildUndeleteCommand creates a Command that makes a soft-deleted book visible again.
func BuildUndeleteCommand(bookID catalog.BookID) Command {
	return Command{BookID: bookID, SoftDeleted: false}
}
