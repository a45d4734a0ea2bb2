package listing

import (
	"context"
	"sync"
)

// ListQuery accumulates filter, order, and page window. Building it executes nothing; a Source executes it.
type ListQuery struct {
	filter   Filter
	order    OrderBy
	pageNum  int
	pageSize int
}

func (q ListQuery) Filter() Filter { return q.filter }
func (q ListQuery) Order() OrderBy { return q.order }
func (q ListQuery) PageNum() int   { return q.pageNum }

// PageSize returns the requested page size, DefaultPageSize if the requested one was below 1.
func (q ListQuery) PageSize() int {
	if q.pageSize < 1 {
		return DefaultPageSize
	}

	return q.pageSize
}

/***** ListQueryBuilder *****/

// BuildListQuery starts a ListQuery. The stages must be given in pipeline order:
//
//	listing.BuildListQuery().FilteredBy(filter).OrderedBy(order).Page(pageNum, pageSize)
func BuildListQuery() UnfilteredQuery {
	return UnfilteredQuery{}
}

// UnfilteredQuery is the first builder stage.
type UnfilteredQuery struct{}

// FilteredBy sets the filter stage.
func (UnfilteredQuery) FilteredBy(f Filter) UnorderedQuery {
	return UnorderedQuery{filter: f}
}

// Unfiltered skips the filter stage.
func (UnfilteredQuery) Unfiltered() UnorderedQuery {
	return UnorderedQuery{}
}

// UnorderedQuery is the second builder stage.
type UnorderedQuery struct {
	filter Filter
}

// OrderedBy sets the sort stage.
func (q UnorderedQuery) OrderedBy(o OrderBy) UnpagedQuery {
	return UnpagedQuery{filter: q.filter, order: o}
}

// UnpagedQuery is the last builder stage.
type UnpagedQuery struct {
	filter Filter
	order  OrderBy
}

// Page sets the 1-based page number and the page size and finalizes the query.
func (q UnpagedQuery) Page(pageNum, pageSize int) ListQuery {
	return ListQuery{filter: q.filter, order: q.order, pageNum: pageNum, pageSize: pageSize}
}

/***** Source *****/

// Source executes a ListQuery. Implementations may push the stages down into a database.
// On error they return no rows.
type Source interface {
	Fetch(ctx context.Context, query ListQuery) (Page, error)
}

// Run applies filter, sort, and page to already projected rows.
func Run(rows []BookListRow, query ListQuery) (Page, error) {
	sorted, err := SortRows(FilterRows(rows, query.Filter()), query.Order())
	if err != nil {
		return Page{}, err
	}

	return PageRows(sorted, query.PageNum(), query.PageSize()), nil
}

// InMemorySource is a Source over projected rows held in memory. It is safe for concurrent use.
type InMemorySource struct {
	mu   sync.RWMutex
	rows []BookListRow
}

// NewInMemorySource serves a copy of rows, typically the result of ProjectBooks.
func NewInMemorySource(rows ...BookListRow) *InMemorySource {
	return &InMemorySource{rows: append([]BookListRow(nil), rows...)}
}

// Replace swaps the rows served by the source.
func (s *InMemorySource) Replace(rows []BookListRow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = append([]BookListRow(nil), rows...)
}

// Fetch runs the query over the held rows.
func (s *InMemorySource) Fetch(ctx context.Context, query ListQuery) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return Run(s.rows, query)
}
