package sqlengine

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
	"github.com/AntonStoeckl/book-catalog-go/catalog/sqlengine/internal/adapters"
)

const sqliteLastInsertID = "SELECT last_insert_rowid()"

// saveResult summarizes a committed unit of work for logging and metrics.
type saveResult struct {
	bookID         catalog.BookID
	inserted       bool
	dispatched     int
	dirty          catalog.FieldSet
	reviewsAdded   int
	reviewsRemoved int
}

// Save runs the unit of work for book: it begins a transaction, dispatches the pending events so that
// the stat handlers update the cached fields, writes all changes, and commits.
//
// A new Book is inserted and gets its ID. For a persisted Book only the dirty columns are written, and each
// dirty cached field is guarded by its concurrency token. If a token no longer matches,
// catalog.ErrConcurrencyConflict is returned; the caller should reload the Book and retry.
//
// On any error the transaction is rolled back. If the error came from a stat handler or the database, the
// in-memory Book is in an undefined state and must be discarded.
func (s *Store) Save(ctx context.Context, book *catalog.Book) error {
	unitOfWorkID := uuid.NewString()

	observer, ctx := s.observe(ctx, logActionSave, spanNameSave, metricSaveDuration, map[string]string{
		spanAttrBookID:    strconv.FormatInt(book.ID(), 10),
		logAttrUnitOfWork: unitOfWorkID,
	})

	result, err := s.runUnitOfWork(ctx, book)
	if err != nil {
		if errors.Is(err, catalog.ErrConcurrencyConflict) {
			s.logOperation(ctx, logMsgConcurrencyConflict, logAttrBookID, book.ID(), logAttrUnitOfWork, unitOfWorkID)
		}

		observer.finishError(err)

		return err
	}

	duration := observer.finishSuccess(map[string]string{
		spanAttrEventsDispatched: strconv.Itoa(result.dispatched),
	})

	s.recordValue(ctx, metricEventsDispatched, float64(result.dispatched), map[string]string{
		spanAttrOperation: logActionSave,
		labelStatus:       statusSuccess,
	})

	s.logOperation(
		ctx,
		logMsgBookSaved,
		logAttrBookID, result.bookID,
		logAttrUnitOfWork, unitOfWorkID,
		"inserted", result.inserted,
		logAttrEventsDispatched, result.dispatched,
		logAttrDirtyFields, len(result.dirty.Fields()),
		logAttrReviewsAdded, result.reviewsAdded,
		logAttrReviewsRemoved, result.reviewsRemoved,
		logAttrDurationMS, toMilliseconds(duration),
	)

	return nil
}

func (s *Store) runUnitOfWork(ctx context.Context, book *catalog.Book) (result saveResult, err error) {
	tx, beginErr := s.db.Begin(ctx)
	if beginErr != nil {
		s.logError(ctx, logMsgBeginTxFailed, beginErr)
		return saveResult{}, errors.Join(ErrSavingBookFailed, beginErr)
	}

	defer func() {
		if err == nil {
			return
		}

		if rollbackErr := tx.Rollback(context.WithoutCancel(ctx)); rollbackErr != nil {
			s.logWarn(ctx, logMsgRollbackTxFailed, rollbackErr)
		}
	}()

	dispatched, dispatchErr := catalog.DispatchEvents(book)
	if dispatchErr != nil {
		s.logError(ctx, logMsgDispatchFailed, dispatchErr, logAttrBookID, book.ID())
		return saveResult{}, dispatchErr
	}

	added, removed := book.ReviewChanges()
	result = saveResult{
		inserted:       book.IsNew(),
		dispatched:     dispatched,
		dirty:          book.DirtyFields(),
		reviewsAdded:   len(added),
		reviewsRemoved: len(removed),
	}

	var commit catalog.Commit
	if book.IsNew() {
		commit, err = s.insertBook(ctx, tx, book)
	} else {
		commit, err = s.updateBook(ctx, tx, book)
	}

	if err != nil {
		return saveResult{}, err
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		s.logError(ctx, logMsgCommitTxFailed, commitErr)
		return saveResult{}, errors.Join(ErrSavingBookFailed, commitErr)
	}

	book.Committed(commit)
	result.bookID = book.ID()

	return result, nil
}

func (s *Store) insertBook(ctx context.Context, tx adapters.DBTx, book *catalog.Book) (catalog.Commit, error) {
	bookID, err := s.insertReturningID(ctx, tx, s.table(tableBooks), goqu.Record{
		colTitle:                      book.Title(),
		colDescription:                book.Description(),
		colPublishedOn:                book.PublishedOn(),
		colLastSignificantChange:      book.LastSignificantChange(),
		colPublisher:                  book.Publisher(),
		colOrgPrice:                   book.OrgPrice().Cents(),
		colActualPrice:                book.ActualPrice().Cents(),
		colPromotionalText:            nullablePromotionalText(book),
		colImageURL:                   book.ImageURL(),
		colSoftDeleted:                book.SoftDeleted(),
		colAuthorsOrdered:             book.AuthorsOrdered(),
		colAuthorsOrderedVersion:      0,
		colReviewsCount:               book.ReviewsCount(),
		colReviewsCountVersion:        0,
		colReviewsAverageVotes:        book.ReviewsAverageVotes(),
		colReviewsAverageVotesVersion: 0,
	})
	if err != nil {
		return catalog.Commit{}, err
	}

	authorRows := make([]any, 0, book.AuthorsLink().Len())
	for _, link := range book.AuthorsLink().Items() {
		authorRows = append(authorRows, goqu.Record{
			colBookID:   bookID,
			colAuthorID: link.AuthorID.String(),
			colOrder:    link.Order,
		})
	}

	if err = s.insertRows(ctx, tx, s.table(tableBookAuthors), authorRows); err != nil {
		return catalog.Commit{}, err
	}

	tagRows := make([]any, 0, book.TagsLink().Len())
	for _, link := range book.TagsLink().Items() {
		tagRows = append(tagRows, goqu.Record{
			colBookID: bookID,
			colTagID:  link.TagID,
		})
	}

	if err = s.insertRows(ctx, tx, s.table(tableBookTags), tagRows); err != nil {
		return catalog.Commit{}, err
	}

	added, _ := book.ReviewChanges()
	reviewIDs, err := s.insertReviews(ctx, tx, bookID, added)
	if err != nil {
		return catalog.Commit{}, err
	}

	return catalog.Commit{BookID: bookID, ReviewIDs: reviewIDs}, nil
}

func (s *Store) updateBook(ctx context.Context, tx adapters.DBTx, book *catalog.Book) (catalog.Commit, error) {
	bookID := book.ID()
	dirty := book.DirtyFields()
	tokens := book.Tokens()
	next := tokens.Next(dirty)
	added, removed := book.ReviewChanges()

	reviewIDs, err := s.insertReviews(ctx, tx, bookID, added)
	if err != nil {
		return catalog.Commit{}, err
	}

	if len(removed) > 0 {
		sqlQuery, buildErr := s.toSQL(ctx, s.builder().
			Delete(s.table(tableReviews)).
			Where(goqu.C(colBookID).Eq(bookID), goqu.C(colID).In(removed)))
		if buildErr != nil {
			return catalog.Commit{}, buildErr
		}

		rowsAffected, execErr := s.exec(ctx, tx, sqlQuery)
		if execErr != nil {
			return catalog.Commit{}, execErr
		}

		if rowsAffected != int64(len(removed)) {
			return catalog.Commit{}, catalog.ErrConcurrencyConflict
		}
	}

	if !dirty.Empty() {
		record, conditions := updateRecord(book, dirty, tokens, next)

		sqlQuery, buildErr := s.toSQL(ctx, s.builder().
			Update(s.table(tableBooks)).
			Set(record).
			Where(conditions...))
		if buildErr != nil {
			return catalog.Commit{}, buildErr
		}

		rowsAffected, execErr := s.exec(ctx, tx, sqlQuery)
		if execErr != nil {
			return catalog.Commit{}, execErr
		}

		if rowsAffected == 0 {
			if dirty.CachedFieldsDirty() {
				return catalog.Commit{}, catalog.ErrConcurrencyConflict
			}

			return catalog.Commit{}, catalog.ErrBookNotFound
		}
	}

	return catalog.Commit{BookID: bookID, ReviewIDs: reviewIDs, Tokens: next}, nil
}

// updateRecord builds the SET record for the dirty columns and the WHERE conditions that check the
// concurrency token of every dirty cached field.
func updateRecord(
	book *catalog.Book,
	dirty catalog.FieldSet,
	tokens catalog.ConcurrencyTokens,
	next catalog.ConcurrencyTokens,
) (goqu.Record, []exp.Expression) {

	record := goqu.Record{}
	conditions := []exp.Expression{goqu.C(colID).Eq(book.ID())}

	if dirty.Has(catalog.FieldPublishedOn) {
		record[colPublishedOn] = book.PublishedOn()
	}
	if dirty.Has(catalog.FieldActualPrice) {
		record[colActualPrice] = book.ActualPrice().Cents()
	}
	if dirty.Has(catalog.FieldPromotionalText) {
		record[colPromotionalText] = nullablePromotionalText(book)
	}
	if dirty.Has(catalog.FieldSoftDeleted) {
		record[colSoftDeleted] = book.SoftDeleted()
	}
	if dirty.Has(catalog.FieldAuthorsOrdered) {
		record[colAuthorsOrdered] = book.AuthorsOrdered()
		record[colAuthorsOrderedVersion] = next.AuthorsOrdered
		conditions = append(conditions, goqu.C(colAuthorsOrderedVersion).Eq(tokens.AuthorsOrdered))
	}
	if dirty.Has(catalog.FieldReviewsCount) {
		record[colReviewsCount] = book.ReviewsCount()
		record[colReviewsCountVersion] = next.ReviewsCount
		conditions = append(conditions, goqu.C(colReviewsCountVersion).Eq(tokens.ReviewsCount))
	}
	if dirty.Has(catalog.FieldReviewsAverageVotes) {
		record[colReviewsAverageVotes] = book.ReviewsAverageVotes()
		record[colReviewsAverageVotesVersion] = next.ReviewsAverageVotes
		conditions = append(conditions, goqu.C(colReviewsAverageVotesVersion).Eq(tokens.ReviewsAverageVotes))
	}

	return record, conditions
}

func nullablePromotionalText(book *catalog.Book) any {
	if text, ok := book.PromotionalText(); ok {
		return text
	}

	return nil
}

func (s *Store) insertReviews(
	ctx context.Context,
	tx adapters.DBTx,
	bookID catalog.BookID,
	reviews []catalog.Review,
) ([]catalog.ReviewID, error) {

	ids := make([]catalog.ReviewID, 0, len(reviews))
	for _, review := range reviews {
		id, err := s.insertReturningID(ctx, tx, s.table(tableReviews), goqu.Record{
			colBookID:    bookID,
			colNumStars:  review.NumStars,
			colComment:   review.Comment,
			colVoterName: review.VoterName,
		})
		if err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, nil
}

func (s *Store) insertRows(ctx context.Context, tx adapters.DBTx, table string, rows []any) error {
	if len(rows) == 0 {
		return nil
	}

	sqlQuery, err := s.toSQL(ctx, s.builder().Insert(table).Rows(rows...))
	if err != nil {
		return err
	}

	_, err = s.exec(ctx, tx, sqlQuery)

	return err
}

// insertReturningID inserts one row and returns its generated ID.
// Postgres uses RETURNING, SQLite asks for last_insert_rowid() on the same connection.
func (s *Store) insertReturningID(ctx context.Context, tx adapters.DBTx, table string, record goqu.Record) (int64, error) {
	insert := s.builder().Insert(table).Rows(record)

	var id int64
	scanID := func(rows adapters.DBRows) error {
		return rows.Scan(&id)
	}

	if s.dialect == DialectPostgres {
		sqlQuery, err := s.toSQL(ctx, insert.Returning(goqu.C(colID)))
		if err != nil {
			return 0, err
		}

		if err = s.scanAll(ctx, tx.Query, sqlQuery, logActionSave, scanID); err != nil {
			return 0, errors.Join(ErrSavingBookFailed, err)
		}

		return id, nil
	}

	sqlQuery, err := s.toSQL(ctx, insert)
	if err != nil {
		return 0, err
	}

	if _, err = s.exec(ctx, tx, sqlQuery); err != nil {
		return 0, err
	}

	if err = s.scanAll(ctx, tx.Query, sqliteLastInsertID, logActionSave, scanID); err != nil {
		return 0, errors.Join(ErrSavingBookFailed, err)
	}

	return id, nil
}

// exec runs a statement inside the transaction and returns the number of affected rows.
func (s *Store) exec(ctx context.Context, tx adapters.DBTx, sqlQuery string) (int64, error) {
	start := time.Now()
	result, execErr := tx.Exec(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, logActionSave, time.Since(start))

	if execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		return 0, errors.Join(ErrSavingBookFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		s.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		return 0, errors.Join(ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}
