package listing

import (
	"time"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
)

// BookListRow is the list-view shape of a Book. It is derived, never persisted.
type BookListRow struct {
	BookID              catalog.BookID  `json:"bookId"`
	Title               string          `json:"title"`
	PublishedOn         time.Time       `json:"publishedOn"`
	OrgPrice            catalog.Price   `json:"orgPrice"`
	ActualPrice         catalog.Price   `json:"actualPrice"`
	PromotionalText     *string         `json:"promotionalText"`
	AuthorsOrdered      string          `json:"authorsOrdered"`
	ReviewsCount        int             `json:"reviewsCount"`
	ReviewsAverageVotes *float64        `json:"reviewsAverageVotes"`
	TagIDs              []catalog.TagID `json:"tagIds"`
}

// ProjectBook maps a Book onto its list row.
//
// It reads the cached fields, so the reviews need not be loaded. PromotionalText is nil unless a promotion is
// active, and ReviewsAverageVotes is nil exactly when there are no reviews. TagIDs is empty if the tags were
// not loaded.
func ProjectBook(book *catalog.Book) BookListRow {
	row := BookListRow{
		BookID:         book.ID(),
		Title:          book.Title(),
		PublishedOn:    book.PublishedOn(),
		OrgPrice:       book.OrgPrice(),
		ActualPrice:    book.ActualPrice(),
		AuthorsOrdered: book.AuthorsOrdered(),
		ReviewsCount:   book.ReviewsCount(),
		TagIDs:         []catalog.TagID{},
	}

	if text, ok := book.PromotionalText(); ok {
		row.PromotionalText = &text
	}

	if book.ReviewsCount() > 0 {
		average := book.ReviewsAverageVotes()
		row.ReviewsAverageVotes = &average
	}

	for _, link := range book.TagsLink().Items() {
		row.TagIDs = append(row.TagIDs, link.TagID)
	}

	return row
}

// ProjectBooks projects all books that are not soft-deleted, keeping their order.
func ProjectBooks(books []*catalog.Book) []BookListRow {
	rows := make([]BookListRow, 0, len(books))
	for _, book := range books {
		if book.SoftDeleted() {
			continue
		}

		rows = append(rows, ProjectBook(book))
	}

	return rows
}
