package store

import (
	"context"
	"sync"
	"time"

	"github.com/nongzhi-ai/nongzhi/internal/farm"
)

// Memory keeps readings and logs in process memory. It backs tests and the
// "memory" storage driver for throwaway runs.
type Memory struct {
	mu       sync.RWMutex
	readings []farm.Reading
	logs     []farm.LogEntry
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// InsertReadings implements farm.Store.
func (m *Memory) InsertReadings(_ context.Context, readings []farm.Reading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readings = append(m.readings, readings...)
	return nil
}

// ReadingsSince implements farm.Store.
func (m *Memory) ReadingsSince(_ context.Context, zone farm.Zone, sensor farm.Sensor, since time.Time) ([]farm.Reading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []farm.Reading
	for _, r := range m.readings {
		if r.Zone == zone && r.Sensor == sensor && !r.Time.Before(since) {
			out = append(out, r)
		}
	}
	// Tool handlers can backfill older readings, so insertion order is not
	// guaranteed chronological.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Time.Before(out[j-1].Time); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

// AppendLog implements farm.Store.
func (m *Memory) AppendLog(_ context.Context, entry farm.LogEntry) error {
	if entry.Operator == "" {
		entry.Operator = farm.DefaultOperator
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, entry)
	return nil
}

// RecentLogs implements farm.Store.
func (m *Memory) RecentLogs(_ context.Context, limit int, op string) ([]farm.LogEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []farm.LogEntry
	for i := len(m.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if op == "" || m.logs[i].Op == op {
			out = append(out, m.logs[i])
		}
	}
	return out, nil
}

// Ping implements farm.Store.
func (m *Memory) Ping(context.Context) error { return nil }

// Close implements farm.Store.
func (m *Memory) Close() error { return nil }
