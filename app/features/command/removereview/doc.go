// Package removereview implements the Remove Review use case.
//
// Removing a review that the Book does not have is reported as ErrReviewNotFound before the Book is
// touched. The ReviewRemoved stat handler reverses the review's effect on the cached statistics.
package removereview
