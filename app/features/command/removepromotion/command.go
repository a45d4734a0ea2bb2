package removepromotion

import "github.com/AntonStoeckl/book-catalog-go/catalog"

const commandType = "RemovePromotion"

// Command represents the intent to end a book's promotion.
type Command struct {
	BookID catalog.BookID
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID catalog.BookID) Command {
	return Command{BookID: bookID}
}
