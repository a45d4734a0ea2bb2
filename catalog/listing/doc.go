// Package listing is the read path of the book catalog: it projects Books into list rows and
// runs the pipeline project -> filter -> sort -> page over them.
//
// Every stage is a pure function over rows (ProjectBooks, FilterRows, SortRows, PageRows) and can be
// tested in isolation. A ListQuery built with BuildListQuery only describes the filter, the order, and
// the page window; a Source executes it. InMemorySource runs the stages in memory, the SQL engine
// pushes them down into the database. Both produce the same pages for the same data.
package listing
