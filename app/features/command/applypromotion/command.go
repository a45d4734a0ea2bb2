package applypromotion

import "github.com/AntonStoeckl/book-catalog-go/catalog"

const commandType = "ApplyPromotion"

// Command represents the intent to put a book on promotion.
type Command struct {
	BookID          catalog.BookID
	ActualPrice     catalog.Price
	PromotionalText string
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID catalog.BookID, actualPrice catalog.Price, promotionalText string) Command {
	return Command{
		BookID:          bookID,
		ActualPrice:     actualPrice,
		PromotionalText: promotionalText,
	}
}
