// Package listbooks implements the List Books read path: filter, sort, and page the catalog.
//
// The raw inputs of a presentation layer (filter kind, filter value, sort kind, page number, page size)
// are turned into a listing.ListQuery and executed by a listing.Source. With the SQL store as the source,
// filtering, sorting, and paging run inside the database; with listing.InMemorySource they run in memory.
// Both produce the same page.
//
// Reads use eventual consistency, so a configured replica serves them.
package listbooks
