package changepublicationdate

import (
	"time"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
)

const commandType = "ChangePublicationDate"

// Command represents the intent to move a book's publication date, e.g. for a delayed release.
type Command struct {
	BookID      catalog.BookID
	PublishedOn time.Time
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID catalog.BookID, publishedOn time.Time) Command {
	return Command{
		BookID:      bookID,
		PublishedOn: catalog.ToCatalogTime(publishedOn),
	}
}
