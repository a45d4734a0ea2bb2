package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BookID identifies a Book. IDs are assigned by the store in ascending order, so a higher ID means a newer book.
type BookID = int64

// ReviewID identifies a Review. Zero means the review has not been persisted yet.
type ReviewID = int64

// AuthorID identifies an Author in the (external) author catalog.
type AuthorID = uuid.UUID

// TagID identifies a Tag in the (external) tag catalog, e.g. "Editor's Choice".
type TagID = string

// Price is an amount of money in cents.
type Price int64

// PriceFromCents builds a Price from an amount of cents.
func PriceFromCents(cents int64) Price {
	return Price(cents)
}

// Cents returns the amount in cents.
func (p Price) Cents() int64 {
	return int64(p)
}

// String renders the price with two decimals, e.g. "$12.50".
func (p Price) String() string {
	sign := ""
	cents := int64(p)
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// Author is a reference into the author catalog.
type Author struct {
	ID   AuthorID
	Name string
}

// Tag is a reference into the tag catalog.
type Tag struct {
	ID TagID
}

// Review is a single rating with comment, owned by exactly one Book.
type Review struct {
	ID        ReviewID
	NumStars  int
	Comment   string
	VoterName string
}

// AuthorLink joins a Book and an Author. Order establishes the display sequence, starting at 0.
type AuthorLink struct {
	AuthorID AuthorID
	Order    uint8
}

// TagLink joins a Book and a Tag.
type TagLink struct {
	TagID TagID
}

// ToCatalogTime normalizes a time to UTC with second precision, which is what the stores persist.
func ToCatalogTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
