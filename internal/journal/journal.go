package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/catalogview/internal/bus"
	"github.com/roach88/catalogview/internal/loop"
)

//go:embed schema.sql
var schemaSQL string

// Record is one journaled dispatch.
type Record struct {
	Seq     int64          `json:"seq"`
	Name    string         `json:"name"`
	Source  string         `json:"source,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Journal is the in-memory event log.
type Journal struct {
	db    *sql.DB
	clock *loop.Clock
}

// Open creates an empty journal.
func Open() (*Journal, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// Every pooled connection to ":memory:" is a separate database, so the
	// pool is pinned to one connection that never expires.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}

	for _, stmt := range []string{"PRAGMA synchronous = OFF", schemaSQL} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize journal: %w", err)
		}
	}

	return &Journal{db: db, clock: loop.NewClock()}, nil
}

// Close releases the database. The journal's contents are lost.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Observe journals ev. It is a bus.Observer; failures are logged.
func (j *Journal) Observe(ev bus.Event) {
	if _, err := j.Append(context.Background(), ev); err != nil {
		slog.Warn("journal write failed", "event", ev.Name, "error", err)
	}
}

// Append journals ev and returns its sequence number.
func (j *Journal) Append(ctx context.Context, ev bus.Event) (int64, error) {
	payload, err := encodePayload(ev.Payload)
	if err != nil {
		return 0, fmt.Errorf("append %s: %w", ev.Name, err)
	}

	seq := j.clock.Next()
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO events (seq, name, source, payload)
		VALUES (?, ?, ?, ?)
	`,
		seq,
		ev.Name,
		sourceLabel(ev.Payload.Source()),
		payload,
	)
	if err != nil {
		return 0, fmt.Errorf("append %s: %w", ev.Name, err)
	}
	return seq, nil
}

// Events returns every record ordered by seq. Returns an empty slice, not
// nil, when nothing has been journaled.
func (j *Journal) Events(ctx context.Context) ([]Record, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, name, source, payload
		FROM events
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			rec  Record
			blob []byte
		)
		if err := rows.Scan(&rec.Seq, &rec.Name, &rec.Source, &blob); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if rec.Payload, err = decodePayload(blob); err != nil {
			return nil, fmt.Errorf("decode event %d: %w", rec.Seq, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return records, nil
}

// Names returns the event names ordered by seq.
func (j *Journal) Names(ctx context.Context) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT name FROM events ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query names: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate names: %w", err)
	}
	return names, nil
}

// Count returns the number of records named name.
func (j *Journal) Count(ctx context.Context, name string) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE name = ?`, name).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", name, err)
	}
	return n, nil
}
