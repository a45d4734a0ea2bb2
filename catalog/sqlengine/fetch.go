package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
	"github.com/AntonStoeckl/book-catalog-go/catalog/listing"
	"github.com/AntonStoeckl/book-catalog-go/catalog/sqlengine/internal/adapters"
)

var listColumns = []any{
	colID,
	colTitle,
	colPublishedOn,
	colOrgPrice,
	colActualPrice,
	colPromotionalText,
	colAuthorsOrdered,
	colReviewsCount,
	colReviewsAverageVotes,
}

// Fetch executes query inside the database: filter, sort, and page window become WHERE, ORDER BY, and
// LIMIT/OFFSET. Soft-deleted books are never listed.
//
// The result is the same page that listing.Run produces for the projected rows of all books.
// With WithEventualConsistency on ctx the query is served by the replica, if one is configured.
func (s *Store) Fetch(ctx context.Context, query listing.ListQuery) (listing.Page, error) {
	observer, ctx := s.observe(ctx, logActionFetch, spanNameFetch, metricFetchDuration, map[string]string{
		spanAttrFilter: query.Filter().Kind().DisplayName(),
		spanAttrOrder:  query.Order().DisplayName(),
	})

	page, err := s.fetch(ctx, query)
	if err != nil {
		observer.finishError(err)
		return listing.Page{}, err
	}

	duration := observer.finishSuccess(map[string]string{
		spanAttrRows: strconv.Itoa(len(page.Rows)),
	})

	s.recordValue(ctx, metricRowsFetched, float64(len(page.Rows)), map[string]string{
		spanAttrOperation: logActionFetch,
		labelStatus:       statusSuccess,
	})

	s.logOperation(
		ctx,
		logMsgPageFetched,
		logAttrRows, len(page.Rows),
		logAttrTotalRows, page.Info.TotalRows,
		"page_num", page.Info.PageNum,
		logAttrConsistency, GetConsistencyLevel(ctx).String(),
		logAttrDurationMS, toMilliseconds(duration),
	)

	return page, nil
}

// fetch runs the count, the page, and the tags in one read transaction, so that the page info
// always describes the returned rows.
func (s *Store) fetch(ctx context.Context, query listing.ListQuery) (page listing.Page, err error) {
	orderBy, err := orderExpressions(query.Order())
	if err != nil {
		return listing.Page{}, err
	}

	tx, beginErr := s.db.BeginRead(ctx, adapters.ReadTxOptions{
		FromReplica: GetConsistencyLevel(ctx) == EventualConsistency,
		Snapshot:    s.dialect == DialectPostgres,
	})
	if beginErr != nil {
		s.logError(ctx, logMsgBeginTxFailed, beginErr)
		return listing.Page{}, errors.Join(ErrQueryingBooksFailed, beginErr)
	}

	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(context.WithoutCancel(ctx)); rollbackErr != nil {
				s.logWarn(ctx, logMsgRollbackTxFailed, rollbackErr)
			}

			return
		}

		if commitErr := tx.Commit(ctx); commitErr != nil {
			s.logError(ctx, logMsgCommitTxFailed, commitErr)
			page, err = listing.Page{}, errors.Join(ErrQueryingBooksFailed, commitErr)
		}
	}()

	read := tx.Query
	conditions := s.filterConditions(query.Filter())

	totalRows, err := s.countRows(ctx, read, conditions)
	if err != nil {
		return listing.Page{}, err
	}

	info := listing.ClampPage(query.PageNum(), query.PageSize(), totalRows)

	sqlQuery, err := s.toSQL(ctx, s.builder().
		From(s.table(tableBooks)).
		Select(listColumns...).
		Where(conditions...).
		Order(orderBy...).
		Limit(uint(info.PageSize)).  //nolint:gosec // clamped to at least 1
		Offset(uint(info.Offset()))) //nolint:gosec // never negative
	if err != nil {
		return listing.Page{}, err
	}

	rows := make([]listing.BookListRow, 0, info.PageSize)
	scanErr := s.scanAll(ctx, read, sqlQuery, logActionFetch, func(dbRows adapters.DBRows) error {
		var (
			row             listing.BookListRow
			publishedOn     scannedTime
			orgPrice        int64
			actualPrice     int64
			promotionalText sql.NullString
			averageVotes    float64
		)

		if err := dbRows.Scan(
			&row.BookID,
			&row.Title,
			&publishedOn,
			&orgPrice,
			&actualPrice,
			&promotionalText,
			&row.AuthorsOrdered,
			&row.ReviewsCount,
			&averageVotes,
		); err != nil {
			return err
		}

		row.PublishedOn = publishedOn.t
		row.OrgPrice = catalog.PriceFromCents(orgPrice)
		row.ActualPrice = catalog.PriceFromCents(actualPrice)
		row.TagIDs = []catalog.TagID{}

		if promotionalText.Valid && promotionalText.String != "" {
			text := promotionalText.String
			row.PromotionalText = &text
		}

		if row.ReviewsCount > 0 {
			row.ReviewsAverageVotes = &averageVotes
		}

		rows = append(rows, row)

		return nil
	})
	if scanErr != nil {
		return listing.Page{}, scanErr
	}

	if err = s.attachTagIDs(ctx, read, rows); err != nil {
		return listing.Page{}, err
	}

	return listing.Page{Rows: rows, Info: info}, nil
}

func (s *Store) countRows(ctx context.Context, read readFunc, conditions []exp.Expression) (int, error) {
	sqlQuery, err := s.toSQL(ctx, s.builder().
		From(s.table(tableBooks)).
		Select(goqu.COUNT(goqu.Star())).
		Where(conditions...))
	if err != nil {
		return 0, err
	}

	var total int64
	scanErr := s.scanAll(ctx, read, sqlQuery, logActionFetch, func(rows adapters.DBRows) error {
		return rows.Scan(&total)
	})

	return int(total), scanErr
}

// attachTagIDs loads the tags of all rows of the page with one query.
func (s *Store) attachTagIDs(ctx context.Context, read readFunc, rows []listing.BookListRow) error {
	if len(rows) == 0 {
		return nil
	}

	ids := make([]catalog.BookID, 0, len(rows))
	index := make(map[catalog.BookID]int, len(rows))
	for i, row := range rows {
		ids = append(ids, row.BookID)
		index[row.BookID] = i
	}

	sqlQuery, err := s.toSQL(ctx, s.builder().
		From(s.table(tableBookTags)).
		Select(colBookID, colTagID).
		Where(goqu.C(colBookID).In(ids)).
		Order(goqu.C(colBookID).Asc(), goqu.C(colTagID).Asc()))
	if err != nil {
		return err
	}

	return s.scanAll(ctx, read, sqlQuery, logActionFetch, func(dbRows adapters.DBRows) error {
		var (
			bookID catalog.BookID
			tagID  catalog.TagID
		)

		if err := dbRows.Scan(&bookID, &tagID); err != nil {
			return err
		}

		if i, ok := index[bookID]; ok {
			rows[i].TagIDs = append(rows[i].TagIDs, tagID)
		}

		return nil
	})
}

// filterConditions translates a listing.Filter into WHERE conditions.
func (s *Store) filterConditions(filter listing.Filter) []exp.Expression {
	conditions := []exp.Expression{goqu.C(colSoftDeleted).Eq(false)}

	switch filter.Kind() {
	case listing.FilterByVotes:
		conditions = append(
			conditions,
			goqu.C(colReviewsCount).Gt(0),
			goqu.C(colReviewsAverageVotes).Gt(float64(filter.VotesThreshold())),
		)

	case listing.FilterByTags:
		conditions = append(conditions, goqu.C(colID).In(
			s.builder().
				From(s.table(tableBookTags)).
				Select(colBookID).
				Where(goqu.C(colTagID).Eq(filter.TagID())),
		))

	case listing.FilterByPublicationYear:
		bounds := filter.DateBounds()
		published := goqu.C(colPublishedOn)

		if !bounds.AtOrAfter.IsZero() {
			conditions = append(conditions, published.Gte(bounds.AtOrAfter))
		}
		if !bounds.After.IsZero() {
			conditions = append(conditions, published.Gt(bounds.After))
		}
		if !bounds.Before.IsZero() {
			conditions = append(conditions, published.Lt(bounds.Before))
		}
		if !bounds.AtOrBefore.IsZero() {
			conditions = append(conditions, published.Lte(bounds.AtOrBefore))
		}
	}

	return conditions
}

// orderExpressions mirrors listing.OrderBy.Compare in SQL.
func orderExpressions(order listing.OrderBy) ([]exp.OrderedExpression, error) {
	id := goqu.C(colID)

	switch order {
	case listing.SimpleOrder:
		return []exp.OrderedExpression{id.Desc()}, nil
	case listing.OrderByVotes:
		return []exp.OrderedExpression{
			goqu.L("CASE WHEN ? = 0 THEN 1 ELSE 0 END", goqu.C(colReviewsCount)).Asc(),
			goqu.C(colReviewsAverageVotes).Desc(),
			id.Asc(),
		}, nil
	case listing.OrderByPublicationDate:
		return []exp.OrderedExpression{goqu.C(colPublishedOn).Desc(), id.Asc()}, nil
	case listing.OrderByPriceLowestFirst:
		return []exp.OrderedExpression{goqu.C(colActualPrice).Asc(), id.Asc()}, nil
	case listing.OrderByPriceHighestFirst:
		return []exp.OrderedExpression{goqu.C(colActualPrice).Desc(), id.Asc()}, nil
	default:
		return nil, errors.Join(listing.ErrUnknownOrder, fmt.Errorf("order %d", order))
	}
}
