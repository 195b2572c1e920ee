package markov

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
)

// SetupSchema creates the tables used by Store. It is idempotent and safe to
// call on an already-initialized database.
func SetupSchema(db *sql.DB) error {

	const (
		schemaModels = `
CREATE TABLE IF NOT EXISTS markov_models (
    model_id INTEGER PRIMARY KEY,
    model_name TEXT NOT NULL UNIQUE,
    model_order INTEGER NOT NULL
);
`
		schemaChains = `
CREATE TABLE IF NOT EXISTS markov_chains (
    model_id INTEGER NOT NULL,
    context TEXT NOT NULL,
    next_token TEXT NOT NULL,
    frequency INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (model_id, context, next_token)
);
`
		schemaStarts = `
CREATE TABLE IF NOT EXISTS markov_starts (
    model_id INTEGER NOT NULL,
    context TEXT NOT NULL,
    frequency INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (model_id, context)
);
`
		schemaWords = `
CREATE TABLE IF NOT EXISTS markov_words (
    model_id INTEGER NOT NULL,
    word TEXT NOT NULL,
    PRIMARY KEY (model_id, word)
);
`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	for _, schema := range []string{schemaModels, schemaChains, schemaStarts, schemaWords} {
		if _, err = tx.Exec(schema); err != nil {
			return fmt.Errorf("could not create schema: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// Store persists Tables in a SQL database under unique model names. It holds
// prepared statements for the read paths; writes run in their own transactions.
type Store struct {
	db               *sql.DB
	stmtGetModelInfo *sql.Stmt
	stmtGetModels    *sql.Stmt
	stmtGetChains    *sql.Stmt
	stmtGetStarts    *sql.Stmt
	stmtGetWords     *sql.Stmt
	logger           *slog.Logger
}

// NewStore prepares the statements used by a Store. SetupSchema must have been
// called on db beforehand.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	prepared := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&s.stmtGetModelInfo, `SELECT model_id, model_order FROM markov_models WHERE model_name = ?;`},
		{&s.stmtGetModels, `SELECT model_id, model_name, model_order FROM markov_models;`},
		{&s.stmtGetChains, `SELECT context, next_token, frequency FROM markov_chains WHERE model_id = ?;`},
		{&s.stmtGetStarts, `SELECT context, frequency FROM markov_starts WHERE model_id = ?;`},
		{&s.stmtGetWords, `SELECT word FROM markov_words WHERE model_id = ?;`},
	}
	for _, p := range prepared {
		stmt, err := db.Prepare(p.query)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to prepare statement %q: %w", p.query, err)
		}
		*p.dst = stmt
	}
	return s, nil
}

// Close releases all prepared SQL statements held by the Store.
func (s *Store) Close() {
	for _, stmt := range []*sql.Stmt{s.stmtGetModelInfo, s.stmtGetModels, s.stmtGetChains, s.stmtGetStarts, s.stmtGetWords} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
}

// SetLogger sets the logger for the Store. By default, all logs are discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}
