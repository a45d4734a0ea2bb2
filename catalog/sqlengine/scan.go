package sqlengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
	"github.com/AntonStoeckl/book-catalog-go/catalog/sqlengine/internal/adapters"
)

// scannedTime accepts the representations the supported drivers return for a timestamp column:
// time.Time from Postgres, RFC 3339 text from SQLite.
type scannedTime struct {
	t time.Time
}

func (s *scannedTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		s.t = v
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into a timestamp", src)
	}

	s.t = catalog.ToCatalogTime(s.t)

	return nil
}

func (s *scannedTime) parse(v string) error {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return err
	}

	s.t = catalog.ToCatalogTime(t)

	return nil
}

// closeRows closes database rows and logs any error.
func (s *Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, closeErr)
	}
}

// scanAll runs query and calls scan once per row.
func (s *Store) scanAll(
	ctx context.Context,
	read func(ctx context.Context, query string) (adapters.DBRows, error),
	sqlQuery string,
	action string,
	scan func(rows adapters.DBRows) error,
) error {

	start := time.Now()
	rows, queryErr := read(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return errors.Join(ErrQueryingBooksFailed, queryErr)
	}
	defer s.closeRows(ctx, rows)

	for rows.Next() {
		if scanErr := scan(rows); scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr, logAttrQuery, sqlQuery)
			return errors.Join(ErrScanningDBRowFailed, scanErr)
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, rowsErr, logAttrQuery, sqlQuery)
		return errors.Join(ErrQueryingBooksFailed, rowsErr)
	}

	return nil
}

// toSQL renders a goqu dataset into an interpolated SQL string.
func (s *Store) toSQL(ctx context.Context, ds interface{ ToSQL() (string, []any, error) }) (string, error) {
	sqlQuery, _, toSQLErr := ds.ToSQL()
	if toSQLErr != nil {
		s.logError(ctx, logMsgBuildQueryFailed, toSQLErr)
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}
