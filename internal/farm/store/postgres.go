package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nongzhi-ai/nongzhi/internal/farm"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS sensor_data (
	id   BIGSERIAL PRIMARY KEY,
	ts   TIMESTAMPTZ NOT NULL,
	zone TEXT NOT NULL,
	type TEXT NOT NULL,
	val  DOUBLE PRECISION NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sensor_data_lookup ON sensor_data (zone, type, ts);

CREATE TABLE IF NOT EXISTS logs (
	id     BIGSERIAL PRIMARY KEY,
	ts     TIMESTAMPTZ NOT NULL,
	op     TEXT NOT NULL,
	detail TEXT NOT NULL,
	who    TEXT NOT NULL DEFAULT 'AI'
);
`

// Postgres stores readings and logs in PostgreSQL through a pgx pool, for
// deployments where several instances share one farm database.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and applies the schema.
func OpenPostgres(dsn string) (*Postgres, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: apply postgres schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// InsertReadings implements farm.Store using one round trip per batch.
func (p *Postgres) InsertReadings(ctx context.Context, readings []farm.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range readings {
		batch.Queue(
			"INSERT INTO sensor_data (ts, zone, type, val) VALUES ($1, $2, $3, $4)",
			r.Time, string(r.Zone), string(r.Sensor), r.Value,
		)
	}
	br := p.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range readings {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("store: insert reading: %w", err)
		}
	}
	return nil
}

// ReadingsSince implements farm.Store.
func (p *Postgres) ReadingsSince(ctx context.Context, zone farm.Zone, sensor farm.Sensor, since time.Time) ([]farm.Reading, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT ts, val FROM sensor_data WHERE zone = $1 AND type = $2 AND ts >= $3 ORDER BY ts",
		string(zone), string(sensor), since,
	)
	if err != nil {
		return nil, fmt.Errorf("store: query readings: %w", err)
	}
	defer rows.Close()

	var out []farm.Reading
	for rows.Next() {
		r := farm.Reading{Zone: zone, Sensor: sensor}
		if err := rows.Scan(&r.Time, &r.Value); err != nil {
			return nil, fmt.Errorf("store: scan reading: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AppendLog implements farm.Store.
func (p *Postgres) AppendLog(ctx context.Context, entry farm.LogEntry) error {
	who := entry.Operator
	if who == "" {
		who = farm.DefaultOperator
	}
	_, err := p.pool.Exec(ctx,
		"INSERT INTO logs (ts, op, detail, who) VALUES ($1, $2, $3, $4)",
		entry.Time, entry.Op, entry.Detail, who,
	)
	if err != nil {
		return fmt.Errorf("store: insert log: %w", err)
	}
	return nil
}

// RecentLogs implements farm.Store.
func (p *Postgres) RecentLogs(ctx context.Context, limit int, op string) ([]farm.LogEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	var (
		rows pgx.Rows
		err  error
	)
	if op != "" {
		rows, err = p.pool.Query(ctx,
			"SELECT ts, op, detail, who FROM logs WHERE op = $1 ORDER BY id DESC LIMIT $2",
			op, limit)
	} else {
		rows, err = p.pool.Query(ctx,
			"SELECT ts, op, detail, who FROM logs ORDER BY id DESC LIMIT $1", limit)
	}
	if err != nil {
		return nil, fmt.Errorf("store: query logs: %w", err)
	}
	defer rows.Close()

	var out []farm.LogEntry
	for rows.Next() {
		var e farm.LogEntry
		if err := rows.Scan(&e.Time, &e.Op, &e.Detail, &e.Operator); err != nil {
			return nil, fmt.Errorf("store: scan log: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Ping implements farm.Store.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close implements farm.Store.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
