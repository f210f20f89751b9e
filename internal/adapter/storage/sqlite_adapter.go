package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var SQLite = Dialect{
	name:         "sqlite",
	goose:        goose.DialectSQLite3,
	isConstraint: isSQLiteConstraint,
}

// OpenSQLite opens a local database file. The pool is pinned to one
// connection, so the file has a single writer and in-memory databases survive.
func OpenSQLite(ctx context.Context, path string) (*SQLAdapter, error) {
	db, err := sql.Open("sqlite", SQLiteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return NewSQLAdapter(db, SQLite), nil
}

// OpenSQLiteMemory opens a private in-memory database with the schema applied.
func OpenSQLiteMemory(ctx context.Context) (*SQLAdapter, error) {
	a, err := OpenSQLite(ctx, "file:"+uuid.NewString()+"?mode=memory")
	if err != nil {
		return nil, err
	}
	if err := a.Migrate(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// SQLiteDSN adds the pragmas the store relies on. Times are written in the
// sortable "YYYY-MM-DD HH:MM:SS.fff+00:00" form so range predicates compare
// correctly as text.
func SQLiteDSN(path string) string {
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite"
}

func isSQLiteConstraint(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
