// Package catalog provides the Book aggregate of the book catalog together with the
// machinery that keeps its denormalized statistics consistent.
//
// A Book owns its Reviews, AuthorLinks and TagLinks. Next to its own columns it carries
// three cached fields (AuthorsOrdered, ReviewsCount, ReviewsAverageVotes) that list views
// read instead of aggregating the child records on every request.
//
// Mutations happen through command methods (AddReview, RemoveReview, ApplyPromotion, ...).
// Mutations that affect the review statistics raise an Event. Before a unit of work commits,
// the persistence collaborator calls DispatchEvents, which runs the statically registered
// stat handler for each event in raise order. The handlers compute the new (count, average)
// pair in O(1) from the cached values and the event's delta and write it back onto the Book.
//
// Key types:
//   - Book: the aggregate root
//   - Collection: a child collection with an explicit LoadStatus
//   - Event: a closed variant of ReviewAdded / ReviewRemoved
//   - ReviewStats: the cached (count, average) pair
//   - ValidationErrors: recoverable, user-facing input errors
//   - PreconditionViolation: panic value for programmer errors
//
// Common usage pattern:
//
//	book, err := catalog.CreateBook(title, description, publishedOn, lastChange, publisher,
//		catalog.PriceFromCents(4999), imageURL, authors)
//	if err != nil {
//		// err is a catalog.ValidationErrors
//	}
//
//	if err := book.AddReview(5, "Great", "Jane"); err != nil {
//		// out-of-range rating
//	}
//
//	err = store.Save(ctx, book) // dispatches the ReviewAdded event, then persists
package catalog
