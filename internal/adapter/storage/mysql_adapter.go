package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"
)

const (
	mysqlErrDuplicateEntry = 1062
	mysqlErrCheckViolated  = 3819
	mysqlErrSignal         = 1644
)

var MySQL = Dialect{
	name:         "mysql",
	goose:        goose.DialectMySQL,
	isConstraint: isMySQLConstraint,
}

// OpenMySQL connects to a MySQL server. parseTime and UTC are forced on the DSN.
func OpenMySQL(ctx context.Context, dsn string) (*SQLAdapter, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return NewSQLAdapter(db, MySQL), nil
}

func isMySQLConstraint(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	switch me.Number {
	case mysqlErrDuplicateEntry, mysqlErrCheckViolated, mysqlErrSignal:
		return true
	}
	return false
}
