package main

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/book-catalog-go/app/features/command/addreview"
	"github.com/AntonStoeckl/book-catalog-go/app/features/command/applypromotion"
	"github.com/AntonStoeckl/book-catalog-go/app/features/command/createbook"
	"github.com/AntonStoeckl/book-catalog-go/catalog"
)

type demoBook struct {
	title     string
	authors   []string
	publisher string
	published time.Time
	cents     int64
	tags      []catalog.TagID
	stars     []int
	promotion int64
}

func demoBooks(now time.Time) []demoBook {
	return []demoBook{
		{
			title:     "Refactoring",
			authors:   []string{"Martin Fowler"},
			publisher: "Addison-Wesley",
			published: time.Date(2018, time.November, 20, 0, 0, 0, 0, time.UTC),
			cents:     4999,
			tags:      []catalog.TagID{"Architecture", "Editor's Choice"},
			stars:     []int{5, 5, 4},
		},
		{
			title:     "Domain-Driven Design",
			authors:   []string{"Eric Evans"},
			publisher: "Addison-Wesley",
			published: time.Date(2003, time.August, 22, 0, 0, 0, 0, time.UTC),
			cents:     5499,
			tags:      []catalog.TagID{"Architecture"},
			stars:     []int{5, 3},
			promotion: 3999,
		},
		{
			title:     "Learning Go",
			authors:   []string{"Jon Bodner"},
			publisher: "O'Reilly",
			published: time.Date(2024, time.January, 9, 0, 0, 0, 0, time.UTC),
			cents:     3999,
			tags:      []catalog.TagID{"Go"},
		},
		{
			title:     "Designing Data-Intensive Applications",
			authors:   []string{"Martin Kleppmann", "Chris Riccomini"},
			publisher: "O'Reilly",
			published: now.AddDate(0, 6, 0),
			cents:     5999,
			tags:      []catalog.TagID{"Databases", "Editor's Choice"},
		},
	}
}

// seed creates the demo catalog through the command handlers, so that every write is a regular unit of work.
func (a *app) seed(ctx context.Context) error {
	now := time.Now()

	create, err := observedCommand[createbook.Command](a, createbook.NewCommandHandler(a.store, a.cfg.RetryOptions()...))
	if err != nil {
		return err
	}

	review, err := observedCommand[addreview.Command](a, addreview.NewCommandHandler(a.store, a.cfg.RetryOptions()...))
	if err != nil {
		return err
	}

	promote, err := observedCommand[applypromotion.Command](a, applypromotion.NewCommandHandler(a.store, a.cfg.RetryOptions()...))
	if err != nil {
		return err
	}

	for _, book := range demoBooks(now) {
		authors := make([]catalog.Author, 0, len(book.authors))
		for _, name := range book.authors {
			authors = append(authors, catalog.Author{ID: uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)), Name: name})
		}

		tags := make([]catalog.Tag, 0, len(book.tags))
		for _, id := range book.tags {
			tags = append(tags, catalog.Tag{ID: id})
		}

		result, createErr := create.Handle(ctx, createbook.BuildCommand(
			book.title,
			"A demo entry for "+book.title+".",
			book.published,
			now,
			book.publisher,
			catalog.PriceFromCents(book.cents),
			"",
			authors,
			tags...,
		))
		if createErr != nil {
			return createErr
		}

		for i, stars := range book.stars {
			voter := "demo reader " + string(rune('A'+i))
			if _, reviewErr := review.Handle(ctx, addreview.BuildCommand(result.BookID, stars, "Seeded review.", voter)); reviewErr != nil {
				return reviewErr
			}
		}

		if book.promotion > 0 {
			_, promoteErr := promote.Handle(ctx, applypromotion.BuildCommand(
				result.BookID,
				catalog.PriceFromCents(book.promotion),
				"Limited offer",
			))
			if promoteErr != nil {
				return promoteErr
			}
		}

		a.logger.Info("demo book seeded", "book_id", result.BookID, "title", book.title)
	}

	return nil
}
