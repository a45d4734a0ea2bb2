// Package removepromotion implements the Remove Promotion use case. The actual price goes back to the
// original price and the promotional text is cleared. Removing from a book without a promotion is idempotent.
package removepromotion
