package listing

// DefaultPageSize is used when a page size below 1 is requested.
const DefaultPageSize = 10

// PageInfo describes the page window after clamping.
type PageInfo struct {
	PageNum    int `json:"pageNum"`
	PageSize   int `json:"pageSize"`
	TotalRows  int `json:"totalRows"`
	TotalPages int `json:"totalPages"`
}

// Offset is the zero-based index of the first row of the page.
func (p PageInfo) Offset() int {
	return (p.PageNum - 1) * p.PageSize
}

// ClampPage computes the page window for totalRows matching rows.
//
// TotalPages is at least 1, even for zero rows. The requested 1-based pageNum is clamped into
// [1, TotalPages], so a page beyond the end yields the last page.
func ClampPage(pageNum, pageSize, totalRows int) PageInfo {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	totalPages := max(1, (totalRows+pageSize-1)/pageSize)
	pageNum = min(max(pageNum, 1), totalPages)

	return PageInfo{
		PageNum:    pageNum,
		PageSize:   pageSize,
		TotalRows:  totalRows,
		TotalPages: totalPages,
	}
}

// Page is one materialized page of list rows.
type Page struct {
	Rows []BookListRow `json:"rows"`
	Info PageInfo      `json:"info"`
}

// PageRows cuts the requested page out of the already filtered and sorted rows.
func PageRows(rows []BookListRow, pageNum, pageSize int) Page {
	info := ClampPage(pageNum, pageSize, len(rows))

	start := info.Offset()
	end := min(start+info.PageSize, len(rows))

	page := make([]BookListRow, 0, end-start)
	page = append(page, rows[start:end]...)

	return Page{Rows: page, Info: info}
}
