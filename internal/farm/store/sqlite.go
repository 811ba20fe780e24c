package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nongzhi-ai/nongzhi/internal/farm"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sensor_data (
	id   INTEGER PRIMARY KEY,
	ts   TEXT NOT NULL,
	zone TEXT NOT NULL,
	type TEXT NOT NULL,
	val  REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sensor_data_lookup ON sensor_data (zone, type, ts);

CREATE TABLE IF NOT EXISTS logs (
	id     INTEGER PRIMARY KEY,
	ts     TEXT NOT NULL,
	op     TEXT NOT NULL,
	detail TEXT NOT NULL,
	who    TEXT NOT NULL DEFAULT 'AI'
);
`

// SQLite stores readings and logs in a local SQLite file. Timestamps are kept
// as RFC 3339 text so range scans work with plain string comparison.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) the database at path and applies
// the schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite %q: %w", path, err)
	}
	// The driver serialises writes; a single connection avoids SQLITE_BUSY
	// between the collector and tool handlers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// InsertReadings implements farm.Store.
func (s *SQLite) InsertReadings(ctx context.Context, readings []farm.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO sensor_data (ts, zone, type, val) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range readings {
		if _, err := stmt.ExecContext(ctx,
			r.Time.Format(time.RFC3339), string(r.Zone), string(r.Sensor), r.Value,
		); err != nil {
			return fmt.Errorf("store: insert reading: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit readings: %w", err)
	}
	return nil
}

// ReadingsSince implements farm.Store.
func (s *SQLite) ReadingsSince(ctx context.Context, zone farm.Zone, sensor farm.Sensor, since time.Time) ([]farm.Reading, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT ts, val FROM sensor_data WHERE zone = ? AND type = ? AND ts >= ? ORDER BY ts",
		string(zone), string(sensor), since.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("store: query readings: %w", err)
	}
	defer rows.Close()

	var out []farm.Reading
	for rows.Next() {
		var ts string
		var val float64
		if err := rows.Scan(&ts, &val); err != nil {
			return nil, fmt.Errorf("store: scan reading: %w", err)
		}
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			// Skip rows with unparseable timestamps rather than failing the
			// whole query.
			continue
		}
		out = append(out, farm.Reading{Time: t, Zone: zone, Sensor: sensor, Value: val})
	}
	return out, rows.Err()
}

// AppendLog implements farm.Store.
func (s *SQLite) AppendLog(ctx context.Context, entry farm.LogEntry) error {
	who := entry.Operator
	if who == "" {
		who = farm.DefaultOperator
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO logs (ts, op, detail, who) VALUES (?, ?, ?, ?)",
		entry.Time.Format(time.RFC3339), entry.Op, entry.Detail, who,
	)
	if err != nil {
		return fmt.Errorf("store: insert log: %w", err)
	}
	return nil
}

// RecentLogs implements farm.Store.
func (s *SQLite) RecentLogs(ctx context.Context, limit int, op string) ([]farm.LogEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	var (
		rows *sql.Rows
		err  error
	)
	if op != "" {
		rows, err = s.db.QueryContext(ctx,
			"SELECT ts, op, detail, who FROM logs WHERE op = ? ORDER BY id DESC LIMIT ?",
			op, limit)
	} else {
		rows, err = s.db.QueryContext(ctx,
			"SELECT ts, op, detail, who FROM logs ORDER BY id DESC LIMIT ?", limit)
	}
	if err != nil {
		return nil, fmt.Errorf("store: query logs: %w", err)
	}
	defer rows.Close()

	var out []farm.LogEntry
	for rows.Next() {
		var ts string
		var e farm.LogEntry
		if err := rows.Scan(&ts, &e.Op, &e.Detail, &e.Operator); err != nil {
			return nil, fmt.Errorf("store: scan log: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			e.Time = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Ping implements farm.Store.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements farm.Store.
func (s *SQLite) Close() error {
	return s.db.Close()
}
