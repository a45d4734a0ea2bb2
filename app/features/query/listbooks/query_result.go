package listbooks

import "github.com/AntonStoeckl/book-catalog-go/catalog/listing"

// BookList is the result of a List Books query: the rows of the page, the page window after clamping,
// and the display names of the applied filter and order.
type BookList struct {
	Books      []listing.BookListRow `json:"books"`
	Page       listing.PageInfo      `json:"page"`
	FilterName string                `json:"filter"`
	OrderName  string                `json:"order"`
}

func buildBookList(page listing.Page, query listing.ListQuery) BookList {
	return BookList{
		Books:      page.Rows,
		Page:       page.Info,
		FilterName: query.Filter().Kind().DisplayName(),
		OrderName:  query.Order().DisplayName(),
	}
}
