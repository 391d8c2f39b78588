package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lelutin/gonag/internal/nagios"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS outcomes (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    host       TEXT    NOT NULL,
    status     TEXT    NOT NULL CHECK(status IN ('OK', 'WARNING', 'CRITICAL', 'UNKNOWN', 'DEPENDENT')),
    message    TEXT    NOT NULL DEFAULT '',
    checked_at TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_outcomes_host ON outcomes(host);
CREATE INDEX IF NOT EXISTS idx_outcomes_checked_at ON outcomes(checked_at DESC);
`

// Entry is a stored check outcome.
type Entry struct {
	ID        int64
	Host      string
	Status    nagios.Status
	Message   string
	CheckedAt time.Time
}

// DB wraps a SQLite database holding check history.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and applies the schema.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite at %q: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Record persists one check outcome for host.
func (d *DB) Record(ctx context.Context, host string, o nagios.Outcome, at time.Time) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO outcomes (host, status, message, checked_at) VALUES (?, ?, ?, ?)`,
		host,
		string(o.Status),
		o.Message,
		at.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording outcome for %q: %w", host, err)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (d *DB) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, host, status, message, checked_at FROM outcomes ORDER BY checked_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent outcomes: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// OKPercent returns the percentage of OK outcomes in the last N entries
// for a host.
func (d *DB) OKPercent(ctx context.Context, host string, last int) (float64, error) {
	var total int
	var okCount sql.NullInt64
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*), SUM(CASE WHEN status = 'OK' THEN 1 ELSE 0 END)
		FROM (
			SELECT status FROM outcomes WHERE host = ? ORDER BY checked_at DESC LIMIT ?
		)
	`, host, last).Scan(&total, &okCount)
	if err != nil {
		return 0, fmt.Errorf("calculating OK rate for %q: %w", host, err)
	}
	if total == 0 {
		return 0, nil
	}
	return float64(okCount.Int64) / float64(total) * 100, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var e Entry
	var status, checkedAt string
	if err := row.Scan(&e.ID, &e.Host, &status, &e.Message, &checkedAt); err != nil {
		return nil, err
	}
	e.Status = nagios.Status(status)
	t, err := time.Parse(time.RFC3339Nano, checkedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing checked_at %q: %w", checkedAt, err)
	}
	e.CheckedAt = t
	return &e, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning outcome row: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating outcome rows: %w", err)
	}
	return entries, nil
}
