// Package applypromotion implements the Apply Promotion use case: a new actual price together with a
// promotional text. The original price is kept, so that the promotion can be removed again.
//
// Applying the same price and text a second time is idempotent.
package applypromotion
