//go:build cgo_sqlite

package main

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// initDB opens the database with the cgo driver, which understands the
// _journal_mode style parameters of DatabasePath directly.
func initDB(dataSource string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dataSource)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open %q: %w", dataSource, err)
	}
	return db, nil
}
