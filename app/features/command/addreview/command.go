package addreview

import "github.com/AntonStoeckl/book-catalog-go/catalog"

const commandType = "AddReview"

// Command represents the intent of a voter to review a book.
type Command struct {
	BookID    catalog.BookID
	NumStars  int
	Comment   string
	VoterName string
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID catalog.BookID, numStars int, comment string, voterName string) Command {
	return Command{
		BookID:    bookID,
		NumStars:  numStars,
		Comment:   comment,
		VoterName: voterName,
	}
}
