package createbook

import (
	"time"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
)

const commandType = "CreateBook"

// Command represents the intent to add a new book to the catalog.
type Command struct {
	Title                 string
	Description           string
	PublishedOn           time.Time
	LastSignificantChange time.Time
	Publisher             string
	Price                 catalog.Price
	ImageURL              string
	Authors               []catalog.Author
	Tags                  []catalog.Tag
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	title string,
	description string,
	publishedOn time.Time,
	createdAt time.Time,
	publisher string,
	price catalog.Price,
	imageURL string,
	authors []catalog.Author,
	tags ...catalog.Tag,
) Command {

	return Command{
		Title:                 title,
		Description:           description,
		PublishedOn:           catalog.ToCatalogTime(publishedOn),
		LastSignificantChange: catalog.ToCatalogTime(createdAt),
		Publisher:             publisher,
		Price:                 price,
		ImageURL:              imageURL,
		Authors:               authors,
		Tags:                  tags,
	}
}
