// Package ledger keeps a durable SQLite record of what discovery runs have
// reported, so found names survive the process.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/CTAG07/namehunt/pkg/discovery"
)

const schema = `
CREATE TABLE IF NOT EXISTS probe_results (
    domain        TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    outcome       TEXT NOT NULL,
    run_id        TEXT NOT NULL,
    total_hits    INTEGER NOT NULL DEFAULT 1,
    first_seen    DATETIME NOT NULL,
    last_seen     DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_probe_results_outcome ON probe_results (outcome, last_seen);
`

// SetupSchema creates the ledger tables. It is idempotent.
func SetupSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("could not create ledger schema: %w", err)
	}
	return nil
}

// Entry is the latest known state of one domain.
type Entry struct {
	Domain    string
	Name      string
	Outcome   discovery.Outcome
	RunID     uuid.UUID
	Hits      int // How many times the domain was reported, across runs
	FirstSeen time.Time
	LastSeen  time.Time
}

// Summary counts domains by their latest outcome.
type Summary struct {
	Domains  int64
	Reports  int64
	Outcomes map[discovery.Outcome]int64
}

// Ledger records discovery events. It implements discovery.Sink.
type Ledger struct {
	db     *sql.DB
	logger *slog.Logger
}

// New returns a Ledger over db. SetupSchema must have been called beforehand.
func New(db *sql.DB) *Ledger {
	return &Ledger{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger for the Ledger. By default, all logs are discarded.
func (l *Ledger) SetLogger(logger *slog.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// Report upserts the event's domain with its outcome. Events without a
// domain, such as the terminal Exhausted event, are ignored.
func (l *Ledger) Report(ctx context.Context, event discovery.Event) error {
	if event.Domain == "" {
		return nil
	}
	seen := event.Time
	if seen.IsZero() {
		seen = time.Now()
	}
	seen = seen.UTC()

	_, err := l.db.ExecContext(ctx, `
        INSERT INTO probe_results (domain, name, outcome, run_id, first_seen, last_seen) VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(domain) DO UPDATE SET outcome = excluded.outcome, run_id = excluded.run_id,
            total_hits = total_hits + 1, last_seen = excluded.last_seen
    `, event.Domain, event.Name, event.Outcome.String(), event.RunID.String(), seen, seen)
	if err != nil {
		return fmt.Errorf("failed to upsert probe_results: %w", err)
	}

	l.logger.DebugContext(ctx, "Event recorded",
		slog.String("domain", event.Domain),
		slog.String("outcome", event.Outcome.String()),
	)
	return nil
}

// Found lists up to limit domains whose latest outcome is outcome, most
// recently seen first. A limit of 0 or less means no limit.
func (l *Ledger) Found(ctx context.Context, outcome discovery.Outcome, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := l.db.QueryContext(ctx, `
        SELECT domain, name, outcome, run_id, total_hits, first_seen, last_seen
        FROM probe_results WHERE outcome = ? ORDER BY last_seen DESC, domain LIMIT ?
    `, outcome.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query probe_results: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var entries []Entry
	for rows.Next() {
		var e Entry
		var outcomeText, runID string
		if err = rows.Scan(&e.Domain, &e.Name, &outcomeText, &runID, &e.Hits, &e.FirstSeen, &e.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan probe_results: %w", err)
		}
		e.Outcome, _ = discovery.ParseOutcome(outcomeText)
		if e.RunID, err = uuid.Parse(runID); err != nil {
			l.logger.WarnContext(ctx, "Malformed run id in ledger",
				slog.String("domain", e.Domain),
				slog.String("run_id", runID),
			)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Available lists up to limit domains found available, most recent first.
func (l *Ledger) Available(ctx context.Context, limit int) ([]Entry, error) {
	return l.Found(ctx, discovery.OutcomeAvailable, limit)
}

// Summary returns the number of distinct domains, the total number of
// reports and the number of domains per latest outcome.
func (l *Ledger) Summary(ctx context.Context) (Summary, error) {
	summary := Summary{Outcomes: make(map[discovery.Outcome]int64)}
	err := l.db.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(SUM(total_hits), 0) FROM probe_results").Scan(&summary.Domains, &summary.Reports)
	if err != nil {
		return summary, fmt.Errorf("failed to summarize probe_results: %w", err)
	}

	rows, err := l.db.QueryContext(ctx, "SELECT outcome, COUNT(*) FROM probe_results GROUP BY outcome")
	if err != nil {
		return summary, fmt.Errorf("failed to group probe_results: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	for rows.Next() {
		var outcomeText string
		var count int64
		if err = rows.Scan(&outcomeText, &count); err != nil {
			return summary, err
		}
		if o, ok := discovery.ParseOutcome(outcomeText); ok {
			summary.Outcomes[o] = count
		}
	}
	return summary, rows.Err()
}
