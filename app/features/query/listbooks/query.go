package listbooks

import "github.com/AntonStoeckl/book-catalog-go/catalog/listing"

const queryType = "ListBooks"

// Query represents the intent to show one page of the catalog.
type Query struct {
	FilterKind  listing.FilterKind
	FilterValue string
	SortKind    listing.OrderBy
	PageNumber  int
	PageSize    int
}

// BuildQuery creates a new Query with the provided parameters.
// A page size below 1 means the handler's default page size.
func BuildQuery(
	filterKind listing.FilterKind,
	filterValue string,
	sortKind listing.OrderBy,
	pageNumber int,
	pageSize int,
) Query {

	return Query{
		FilterKind:  filterKind,
		FilterValue: filterValue,
		SortKind:    sortKind,
		PageNumber:  pageNumber,
		PageSize:    pageSize,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
