//go:build !cgo_sqlite

package main

import (
	"database/sql"
	"fmt"
	"net/url"
	"slices"
	"strings"

	_ "modernc.org/sqlite"
)

// initDB opens the database with the pure Go driver. DatabasePath uses the
// cgo driver's parameter style, so it is translated first.
func initDB(dataSource string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", nativeDSN(dataSource))
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open %q: %w", dataSource, err)
	}
	return db, nil
}

// driverParams are read by the pure Go driver itself and are never pragmas.
var driverParams = map[string]bool{
	"_pragma":      true,
	"_time_format": true,
	"_txlock":      true,
}

// nativeDSN rewrites parameters like _journal_mode=WAL into the
// _pragma=journal_mode(WAL) form. Driver and unknown parameters pass through.
func nativeDSN(dataSource string) string {
	path, rawQuery, ok := strings.Cut(dataSource, "?")
	if !ok {
		return dataSource
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return dataSource
	}

	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	out := url.Values{}
	for _, key := range keys {
		for _, value := range query[key] {
			if name, isPragma := strings.CutPrefix(key, "_"); isPragma && !driverParams[key] {
				out.Add("_pragma", fmt.Sprintf("%s(%s)", name, value))
				continue
			}
			out.Add(key, value)
		}
	}
	return path + "?" + out.Encode()
}
