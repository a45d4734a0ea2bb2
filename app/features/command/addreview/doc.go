// Package addreview implements the Add Review use case.
//
// The handler loads the Book with its reviews, adds the review, and saves it. The save dispatches
// the ReviewAdded event, whose stat handler updates the cached review count and average, guarded by
// their concurrency tokens. If another voter got there first, the whole load, add, save cycle is
// retried on a freshly loaded Book.
package addreview
