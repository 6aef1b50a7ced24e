package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// ErrDriverUnsupported is returned for drivers other than sqlite3 and postgres.
var ErrDriverUnsupported = errors.New("storage: unsupported driver")

// Open connects to dsn with the database/sql driver registered for driver
// and wraps it in a bun.DB using the matching dialect.
func Open(driver, dsn string) (*bun.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("storage: dsn required")
	}

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("storage: open sqlite3: %w", err)
		}
		// sqlite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	case "postgres", "postgresql", "pg":
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("storage: open postgres: %w", err)
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrDriverUnsupported, driver)
	}
}
