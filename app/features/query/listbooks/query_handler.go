package listbooks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AntonStoeckl/book-catalog-go/catalog/listing"
	"github.com/AntonStoeckl/book-catalog-go/catalog/sqlengine"
)

// ErrInvalidDefaultPageSize is returned by WithDefaultPageSize for a size below 1.
var ErrInvalidDefaultPageSize = errors.New("default page size must be positive")

// QueryHandler turns a Query into a listing.ListQuery and runs it against the source.
// All observability concerns are handled by the external observable wrapper.
type QueryHandler struct {
	source          listing.Source
	now             func() time.Time
	defaultPageSize int
}

// NewQueryHandler creates a new QueryHandler reading from source.
func NewQueryHandler(source listing.Source, opts ...Option) (QueryHandler, error) {
	h := QueryHandler{
		source:          source,
		now:             time.Now,
		defaultPageSize: listing.DefaultPageSize,
	}

	for _, opt := range opts {
		if err := opt(&h); err != nil {
			return QueryHandler{}, err
		}
	}

	return h, nil
}

// Handle builds the filter relative to the handler's clock, composes the list query, and fetches the page.
// A malformed filter value is returned as listing.ErrMalformedFilterValue, an undefined sort kind as
// listing.ErrUnknownOrder.
func (h QueryHandler) Handle(ctx context.Context, query Query) (BookList, error) {
	listQuery, err := h.buildListQuery(query)
	if err != nil {
		return BookList{}, err
	}

	page, err := h.source.Fetch(sqlengine.WithEventualConsistency(ctx), listQuery)
	if err != nil {
		return BookList{}, err
	}

	return buildBookList(page, listQuery), nil
}

func (h QueryHandler) buildListQuery(query Query) (listing.ListQuery, error) {
	if !query.SortKind.Valid() {
		return listing.ListQuery{}, errors.Join(listing.ErrUnknownOrder, fmt.Errorf("sort kind %d", query.SortKind))
	}

	filter, err := listing.BuildFilter(query.FilterKind, query.FilterValue, h.now())
	if err != nil {
		return listing.ListQuery{}, err
	}

	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = h.defaultPageSize
	}

	return listing.BuildListQuery().
		FilteredBy(filter).
		OrderedBy(query.SortKind).
		Page(query.PageNumber, pageSize), nil
}

// Option defines a functional option for configuring the QueryHandler.
type Option func(*QueryHandler) error

// WithClock sets the clock the publication-year filters are relative to.
func WithClock(now func() time.Time) Option {
	return func(h *QueryHandler) error {
		h.now = now
		return nil
	}
}

// WithDefaultPageSize sets the page size used when a Query asks for less than 1 row per page.
func WithDefaultPageSize(pageSize int) Option {
	return func(h *QueryHandler) error {
		if pageSize < 1 {
			return ErrInvalidDefaultPageSize
		}

		h.defaultPageSize = pageSize

		return nil
	}
}
