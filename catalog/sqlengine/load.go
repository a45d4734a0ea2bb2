package sqlengine

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
	"github.com/AntonStoeckl/book-catalog-go/catalog/sqlengine/internal/adapters"
)

// Include selects a child collection to load together with the Book.
// Collections that are not included stay catalog.NotLoaded.
type Include uint8

const (
	IncludeReviews Include = 1 << iota
	IncludeAuthors
	IncludeTags
)

// IncludeAll loads every child collection.
const IncludeAll = IncludeReviews | IncludeAuthors | IncludeTags

func (i Include) String() string {
	var names []string
	if i&IncludeReviews != 0 {
		names = append(names, "reviews")
	}
	if i&IncludeAuthors != 0 {
		names = append(names, "authors")
	}
	if i&IncludeTags != 0 {
		names = append(names, "tags")
	}

	if len(names) == 0 {
		return "none"
	}

	return strings.Join(names, ",")
}

var bookColumns = []any{
	colID,
	colTitle,
	colDescription,
	colPublishedOn,
	colLastSignificantChange,
	colPublisher,
	colOrgPrice,
	colActualPrice,
	colPromotionalText,
	colImageURL,
	colSoftDeleted,
	colAuthorsOrdered,
	colAuthorsOrderedVersion,
	colReviewsCount,
	colReviewsCountVersion,
	colReviewsAverageVotes,
	colReviewsAverageVotesVersion,
}

// Load reads the Book with bookID and the requested child collections.
// It returns catalog.ErrBookNotFound if there is no such Book. Soft-deleted books are loaded as well.
func (s *Store) Load(ctx context.Context, bookID catalog.BookID, includes ...Include) (*catalog.Book, error) {
	var include Include
	for _, i := range includes {
		include |= i
	}

	observer, ctx := s.observe(ctx, logActionLoad, spanNameLoad, metricLoadDuration, map[string]string{
		spanAttrBookID: strconv.FormatInt(bookID, 10),
	})

	book, err := s.load(ctx, bookID, include)
	if err != nil {
		observer.finishError(err)
		return nil, err
	}

	duration := observer.finishSuccess(nil)
	s.logOperation(
		ctx,
		logMsgBookLoaded,
		logAttrBookID, bookID,
		logAttrIncludes, include.String(),
		logAttrConsistency, GetConsistencyLevel(ctx).String(),
		logAttrDurationMS, toMilliseconds(duration),
	)

	return book, nil
}

func (s *Store) load(ctx context.Context, bookID catalog.BookID, include Include) (*catalog.Book, error) {
	read := s.reader(ctx)

	state, found, err := s.loadBookRow(ctx, read, bookID)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, catalog.ErrBookNotFound
	}

	if include&IncludeReviews != 0 {
		reviews, reviewsErr := s.loadReviews(ctx, read, bookID)
		if reviewsErr != nil {
			return nil, reviewsErr
		}

		state.Reviews = catalog.LoadedCollection(reviews...)
	}

	if include&IncludeAuthors != 0 {
		authors, authorsErr := s.loadAuthorLinks(ctx, read, bookID)
		if authorsErr != nil {
			return nil, authorsErr
		}

		state.AuthorsLink = catalog.LoadedCollection(authors...)
	}

	if include&IncludeTags != 0 {
		tags, tagsErr := s.loadTagLinks(ctx, read, bookID)
		if tagsErr != nil {
			return nil, tagsErr
		}

		state.TagsLink = catalog.LoadedCollection(tags...)
	}

	return catalog.RestoreBook(state), nil
}

type readFunc = func(ctx context.Context, query string) (adapters.DBRows, error)

func (s *Store) loadBookRow(ctx context.Context, read readFunc, bookID catalog.BookID) (catalog.BookState, bool, error) {
	sqlQuery, err := s.toSQL(ctx, s.builder().
		From(s.table(tableBooks)).
		Select(bookColumns...).
		Where(goqu.C(colID).Eq(bookID)))
	if err != nil {
		return catalog.BookState{}, false, err
	}

	var state catalog.BookState
	found := false

	scanErr := s.scanAll(ctx, read, sqlQuery, logActionLoad, func(rows adapters.DBRows) error {
		var (
			publishedOn, lastChange scannedTime
			orgPrice, actualPrice   int64
			promotionalText         sql.NullString
			authorsVersion          int64
			countVersion            int64
			averageVersion          int64
		)

		if err := rows.Scan(
			&state.ID,
			&state.Title,
			&state.Description,
			&publishedOn,
			&lastChange,
			&state.Publisher,
			&orgPrice,
			&actualPrice,
			&promotionalText,
			&state.ImageURL,
			&state.SoftDeleted,
			&state.AuthorsOrdered,
			&authorsVersion,
			&state.ReviewsCount,
			&countVersion,
			&state.ReviewsAverageVotes,
			&averageVersion,
		); err != nil {
			return err
		}

		state.PublishedOn = publishedOn.t
		state.LastSignificantChange = lastChange.t
		state.OrgPrice = catalog.PriceFromCents(orgPrice)
		state.ActualPrice = catalog.PriceFromCents(actualPrice)
		state.PromotionalText = promotionalText.String
		state.Tokens = catalog.ConcurrencyTokens{
			AuthorsOrdered:      uint64(authorsVersion), //nolint:gosec // versions are never negative
			ReviewsCount:        uint64(countVersion),   //nolint:gosec
			ReviewsAverageVotes: uint64(averageVersion), //nolint:gosec
		}
		found = true

		return nil
	})

	return state, found, scanErr
}

func (s *Store) loadReviews(ctx context.Context, read readFunc, bookID catalog.BookID) ([]catalog.Review, error) {
	sqlQuery, err := s.toSQL(ctx, s.builder().
		From(s.table(tableReviews)).
		Select(colID, colNumStars, colComment, colVoterName).
		Where(goqu.C(colBookID).Eq(bookID)).
		Order(goqu.C(colID).Asc()))
	if err != nil {
		return nil, err
	}

	var reviews []catalog.Review
	scanErr := s.scanAll(ctx, read, sqlQuery, logActionLoad, func(rows adapters.DBRows) error {
		var r catalog.Review
		if err := rows.Scan(&r.ID, &r.NumStars, &r.Comment, &r.VoterName); err != nil {
			return err
		}

		reviews = append(reviews, r)

		return nil
	})

	return reviews, scanErr
}

func (s *Store) loadAuthorLinks(ctx context.Context, read readFunc, bookID catalog.BookID) ([]catalog.AuthorLink, error) {
	sqlQuery, err := s.toSQL(ctx, s.builder().
		From(s.table(tableBookAuthors)).
		Select(colAuthorID, colOrder).
		Where(goqu.C(colBookID).Eq(bookID)).
		Order(goqu.C(colOrder).Asc()))
	if err != nil {
		return nil, err
	}

	var links []catalog.AuthorLink
	scanErr := s.scanAll(ctx, read, sqlQuery, logActionLoad, func(rows adapters.DBRows) error {
		var (
			authorID string
			order    int64
		)

		if err := rows.Scan(&authorID, &order); err != nil {
			return err
		}

		id, parseErr := uuid.Parse(authorID)
		if parseErr != nil {
			return parseErr
		}

		links = append(links, catalog.AuthorLink{AuthorID: id, Order: uint8(order)}) //nolint:gosec // stored from a uint8

		return nil
	})

	return links, scanErr
}

func (s *Store) loadTagLinks(ctx context.Context, read readFunc, bookID catalog.BookID) ([]catalog.TagLink, error) {
	sqlQuery, err := s.toSQL(ctx, s.builder().
		From(s.table(tableBookTags)).
		Select(colTagID).
		Where(goqu.C(colBookID).Eq(bookID)).
		Order(goqu.C(colTagID).Asc()))
	if err != nil {
		return nil, err
	}

	var links []catalog.TagLink
	scanErr := s.scanAll(ctx, read, sqlQuery, logActionLoad, func(rows adapters.DBRows) error {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			return err
		}

		links = append(links, catalog.TagLink{TagID: tagID})

		return nil
	})

	return links, scanErr
}
