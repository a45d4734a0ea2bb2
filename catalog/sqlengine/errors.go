package sqlengine

import "errors"

var (
	ErrNilDatabaseConnection     = errors.New("database connection must not be nil")
	ErrUnsupportedDialect        = errors.New("unsupported SQL dialect")
	ErrDialectNotConfigurable    = errors.New("the dialect of a pgx pool is always postgres")
	ErrBuildingQueryFailed       = errors.New("building the SQL query failed")
	ErrQueryingBooksFailed       = errors.New("querying books failed")
	ErrScanningDBRowFailed       = errors.New("scanning a database row failed")
	ErrSavingBookFailed          = errors.New("saving the book failed")
	ErrCreatingSchemaFailed      = errors.New("creating the schema failed")
	ErrGettingRowsAffectedFailed = errors.New("getting the rows affected count failed")
)
