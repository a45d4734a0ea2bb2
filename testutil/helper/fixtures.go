package helper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
)

// BookSaver is the part of a store the fixtures need.
type BookSaver interface {
	Save(ctx context.Context, book *catalog.Book) error
}

// GivenUniqueID returns a fresh time ordered UUID.
func GivenUniqueID(t testing.TB) uuid.UUID {
	id, err := uuid.NewV7()
	require.NoError(t, err, "error in arranging test data")

	return id
}

// GivenAuthors returns one author with a fresh ID per name, in the given order.
func GivenAuthors(t testing.TB, names ...string) []catalog.Author {
	authors := make([]catalog.Author, 0, len(names))
	for _, name := range names {
		authors = append(authors, catalog.Author{ID: GivenUniqueID(t), Name: name})
	}

	return authors
}

// GivenTags returns a tag per ID.
func GivenTags(ids ...catalog.TagID) []catalog.Tag {
	tags := make([]catalog.Tag, 0, len(ids))
	for _, id := range ids {
		tags = append(tags, catalog.Tag{ID: id})
	}

	return tags
}

// BookFixture describes a book to arrange. Use NewBookFixture and the With... methods.
type BookFixture struct {
	Title            string
	PublishedOn      time.Time
	Price            catalog.Price
	AuthorNames      []string
	TagIDs           []catalog.TagID
	ReviewStars      []int
	PromotionalPrice catalog.Price
	PromotionalText  string
	SoftDeleted      bool
}

// NewBookFixture returns a fixture with one author, a price of $10.00, and a publication date in 2020.
func NewBookFixture(title string) BookFixture {
	return BookFixture{
		Title:       title,
		PublishedOn: time.Date(2020, time.June, 15, 0, 0, 0, 0, time.UTC),
		Price:       catalog.PriceFromCents(1000),
		AuthorNames: []string{"Author of " + title},
	}
}

func (f BookFixture) PublishedAt(publishedOn time.Time) BookFixture {
	f.PublishedOn = publishedOn
	return f
}

func (f BookFixture) Priced(cents int64) BookFixture {
	f.Price = catalog.PriceFromCents(cents)
	return f
}

func (f BookFixture) WrittenBy(names ...string) BookFixture {
	f.AuthorNames = names
	return f
}

func (f BookFixture) TaggedWith(ids ...catalog.TagID) BookFixture {
	f.TagIDs = ids
	return f
}

func (f BookFixture) WithReviews(stars ...int) BookFixture {
	f.ReviewStars = stars
	return f
}

func (f BookFixture) WithPromotion(cents int64, text string) BookFixture {
	f.PromotionalPrice = catalog.PriceFromCents(cents)
	f.PromotionalText = text
	return f
}

func (f BookFixture) Deleted() BookFixture {
	f.SoftDeleted = true
	return f
}

// Build creates the new, not yet saved Book. Reviews are added as pending changes.
func (f BookFixture) Build(t testing.TB) *catalog.Book {
	t.Helper()

	book, err := catalog.CreateBook(
		f.Title,
		"Description of "+f.Title,
		f.PublishedOn,
		f.PublishedOn,
		"Manning",
		f.Price,
		"",
		GivenAuthors(t, f.AuthorNames...),
		GivenTags(f.TagIDs...)...,
	)
	require.NoError(t, err, "error in arranging test data")

	for i, stars := range f.ReviewStars {
		require.NoError(t, book.AddReview(stars, "comment", "voter "+string(rune('A'+i%26))), "error in arranging test data")
	}

	if f.PromotionalText != "" {
		_, err = book.ApplyPromotion(f.PromotionalPrice, f.PromotionalText)
		require.NoError(t, err, "error in arranging test data")
	}

	if f.SoftDeleted {
		book.SetSoftDeleted(true)
	}

	return book
}

// GivenPersistedBook builds the fixture and saves it.
func GivenPersistedBook(t testing.TB, store BookSaver, f BookFixture) *catalog.Book {
	t.Helper()

	book := f.Build(t)
	require.NoError(t, store.Save(context.Background(), book), "error in arranging test data")

	return book
}
