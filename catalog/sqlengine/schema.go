package sqlengine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// columnTypes holds the dialect specific column types used by the DDL.
type columnTypes struct {
	serialPK  string
	bigint    string
	smallint  string
	timestamp string
	boolean   string
	float     string
	falseLit  string
}

var dialectColumnTypes = map[Dialect]columnTypes{
	DialectPostgres: {
		serialPK:  "BIGSERIAL PRIMARY KEY",
		bigint:    "BIGINT",
		smallint:  "SMALLINT",
		timestamp: "TIMESTAMPTZ",
		boolean:   "BOOLEAN",
		float:     "DOUBLE PRECISION",
		falseLit:  "FALSE",
	},
	DialectSQLite: {
		serialPK:  "INTEGER PRIMARY KEY AUTOINCREMENT",
		bigint:    "INTEGER",
		smallint:  "INTEGER",
		timestamp: "TEXT",
		boolean:   "INTEGER",
		float:     "REAL",
		falseLit:  "0",
	},
}

// SchemaStatements returns the DDL statements for the configured dialect and table prefix.
func (s *Store) SchemaStatements() []string {
	t := dialectColumnTypes[s.dialect]
	books := s.table(tableBooks)
	reviews := s.table(tableReviews)
	bookAuthors := s.table(tableBookAuthors)
	bookTags := s.table(tableBookTags)

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s %s,
	%s TEXT NOT NULL,
	%s TEXT NOT NULL DEFAULT '',
	%s %s NOT NULL,
	%s %s NOT NULL,
	%s TEXT NOT NULL DEFAULT '',
	%s %s NOT NULL,
	%s %s NOT NULL,
	%s TEXT NULL,
	%s TEXT NOT NULL DEFAULT '',
	%s %s NOT NULL DEFAULT %s,
	%s TEXT NOT NULL,
	%s %s NOT NULL DEFAULT 0,
	%s %s NOT NULL DEFAULT 0,
	%s %s NOT NULL DEFAULT 0,
	%s %s NOT NULL DEFAULT 0,
	%s %s NOT NULL DEFAULT 0
)`,
			books,
			colID, t.serialPK,
			colTitle,
			colDescription,
			colPublishedOn, t.timestamp,
			colLastSignificantChange, t.timestamp,
			colPublisher,
			colOrgPrice, t.bigint,
			colActualPrice, t.bigint,
			colPromotionalText,
			colImageURL,
			colSoftDeleted, t.boolean, t.falseLit,
			colAuthorsOrdered,
			colAuthorsOrderedVersion, t.bigint,
			colReviewsCount, t.bigint,
			colReviewsCountVersion, t.bigint,
			colReviewsAverageVotes, t.float,
			colReviewsAverageVotesVersion, t.bigint,
		),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s %s,
	%s %s NOT NULL REFERENCES %s (%s) ON DELETE CASCADE,
	%s %s NOT NULL,
	%s TEXT NOT NULL DEFAULT '',
	%s TEXT NOT NULL DEFAULT ''
)`,
			reviews,
			colID, t.serialPK,
			colBookID, t.bigint, books, colID,
			colNumStars, t.smallint,
			colComment,
			colVoterName,
		),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s (%s)`, reviews, colBookID, reviews, colBookID),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s %s NOT NULL REFERENCES %s (%s) ON DELETE CASCADE,
	%s TEXT NOT NULL,
	%s %s NOT NULL,
	PRIMARY KEY (%s, %s)
)`,
			bookAuthors,
			colBookID, t.bigint, books, colID,
			colAuthorID,
			colOrder, t.smallint,
			colBookID, colAuthorID,
		),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s %s NOT NULL REFERENCES %s (%s) ON DELETE CASCADE,
	%s TEXT NOT NULL,
	PRIMARY KEY (%s, %s)
)`,
			bookTags,
			colBookID, t.bigint, books, colID,
			colTagID,
			colBookID, colTagID,
		),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s (%s)`, bookTags, colTagID, bookTags, colTagID),
	}
}

// CreateSchema creates all tables and indexes if they do not exist yet.
func (s *Store) CreateSchema(ctx context.Context) error {
	for _, statement := range s.SchemaStatements() {
		start := time.Now()
		_, execErr := s.db.Exec(ctx, statement)
		s.logQueryWithDuration(ctx, statement, logActionSchema, time.Since(start))

		if execErr != nil {
			s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, statement)
			return errors.Join(ErrCreatingSchemaFailed, execErr)
		}
	}

	s.logOperation(ctx, logMsgSchemaCreated, "dialect", string(s.dialect), "table_prefix", s.tablePrefix)

	return nil
}

// DropSchema drops all tables. Intended for tests and the CLI's reset.
func (s *Store) DropSchema(ctx context.Context) error {
	tables := []string{tableBookTags, tableBookAuthors, tableReviews, tableBooks}

	for _, name := range tables {
		statement := "DROP TABLE IF EXISTS " + s.table(name)
		if s.dialect == DialectPostgres {
			statement += " CASCADE"
		}

		if _, execErr := s.db.Exec(ctx, statement); execErr != nil {
			s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, statement)
			return errors.Join(ErrCreatingSchemaFailed, execErr)
		}
	}

	return nil
}

// TruncateAll removes all rows but keeps the tables.
func (s *Store) TruncateAll(ctx context.Context) error {
	var statements []string

	if s.dialect == DialectPostgres {
		names := []string{s.table(tableBooks), s.table(tableReviews), s.table(tableBookAuthors), s.table(tableBookTags)}
		statements = []string{"TRUNCATE TABLE " + strings.Join(names, ", ") + " RESTART IDENTITY CASCADE"}
	} else {
		for _, name := range []string{tableBookTags, tableBookAuthors, tableReviews, tableBooks} {
			statements = append(statements, "DELETE FROM "+s.table(name))
		}
	}

	for _, statement := range statements {
		if _, execErr := s.db.Exec(ctx, statement); execErr != nil {
			s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, statement)
			return errors.Join(ErrQueryingBooksFailed, execErr)
		}
	}

	return nil
}
