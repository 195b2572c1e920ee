package markov

import (
	"database/sql"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestStore creates a new file-backed SQLite database and a Store for testing.
// It uses t.Cleanup to ensure resources are released.
func setupTestStore(t *testing.T) (*sql.DB, *Store) {
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbFile+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=-4000")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}

	s, err := NewStore(db)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(s.Close)

	return db, s
}

// buildTestTable is a convenience helper that trains a table from words.
func buildTestTable(t testing.TB, order int, words ...string) *Table {
	lex, err := NewLexicon(words)
	if err != nil {
		t.Fatalf("setup: NewLexicon() failed: %v", err)
	}
	table, err := Build(lex, order)
	if err != nil {
		t.Fatalf("setup: Build() failed: %v", err)
	}
	return table
}

var testWords = []string{
	"stack", "stream", "strong", "string", "market", "marble", "garden",
	"harbor", "silver", "button", "candle", "timber", "pillow", "rocket",
}

var (
	benchmarkWords []string
	wordsOnce      sync.Once
)

// createBenchmarkWords expands testWords into a larger synthetic word list.
func createBenchmarkWords() []string {
	wordsOnce.Do(func() {
		for _, a := range testWords {
			for _, b := range testWords {
				benchmarkWords = append(benchmarkWords, a+strings.ToUpper(b[:1])+b[1:])
			}
		}
	})
	return benchmarkWords
}
