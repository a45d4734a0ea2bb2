package listing

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownOrder is returned for an OrderBy outside the defined set.
var ErrUnknownOrder = errors.New("unknown order")

// OrderBy selects the sort variant.
type OrderBy uint8

const (
	// SimpleOrder sorts by ID descending, i.e. newest book first.
	SimpleOrder OrderBy = iota
	OrderByVotes
	OrderByPublicationDate
	OrderByPriceLowestFirst
	OrderByPriceHighestFirst
)

var orderDisplayNames = [...]string{
	SimpleOrder:              "sort by...",
	OrderByVotes:             "Votes ↑",
	OrderByPublicationDate:   "Publication Date ↑",
	OrderByPriceLowestFirst:  "Price ↓",
	OrderByPriceHighestFirst: "Price ↑",
}

// Orders lists every defined OrderBy.
func Orders() []OrderBy {
	return []OrderBy{SimpleOrder, OrderByVotes, OrderByPublicationDate, OrderByPriceLowestFirst, OrderByPriceHighestFirst}
}

// DisplayName returns the label a presentation layer shows for the order.
func (o OrderBy) DisplayName() string {
	if o.Valid() {
		return orderDisplayNames[o]
	}

	return "Unknown"
}

// Valid tells whether o is a defined order.
func (o OrderBy) Valid() bool {
	return int(o) < len(orderDisplayNames)
}

// Compare defines the total order of rows for o. Ties of every non-default order are broken by ID ascending.
//
// OrderByVotes sorts rows without reviews after all rows with an average.
func (o OrderBy) Compare(a, b BookListRow) int {
	var c int

	switch o {
	case OrderByVotes:
		c = compareVotesDesc(a.ReviewsAverageVotes, b.ReviewsAverageVotes)
	case OrderByPublicationDate:
		c = b.PublishedOn.Compare(a.PublishedOn)
	case OrderByPriceLowestFirst:
		c = cmp.Compare(a.ActualPrice, b.ActualPrice)
	case OrderByPriceHighestFirst:
		c = cmp.Compare(b.ActualPrice, a.ActualPrice)
	default:
		return cmp.Compare(b.BookID, a.BookID)
	}

	if c != 0 {
		return c
	}

	return cmp.Compare(a.BookID, b.BookID)
}

func compareVotesDesc(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*b, *a)
	}
}

// SortRows returns a sorted copy of rows.
func SortRows(rows []BookListRow, o OrderBy) ([]BookListRow, error) {
	if !o.Valid() {
		return nil, errors.Join(ErrUnknownOrder, fmt.Errorf("order %d", o))
	}

	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, o.Compare)

	return sorted, nil
}
