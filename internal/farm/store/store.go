// Package store provides the persistence backends for farm readings and
// operation logs: SQLite for single-node deployments, PostgreSQL for shared
// ones, and an in-memory implementation for tests. All three satisfy
// [farm.Store].
package store

import (
	"fmt"

	"github.com/nongzhi-ai/nongzhi/internal/farm"
)

// Driver names a storage backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverMemory   Driver = "memory"
)

// Options selects and configures a backend.
type Options struct {
	// Driver selects the backend. Empty defaults to sqlite.
	Driver Driver

	// Path is the SQLite database file. Empty defaults to "farm.db".
	Path string

	// DSN is the PostgreSQL connection string.
	DSN string
}

// Open creates the store selected by opts.
func Open(opts Options) (farm.Store, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		path := opts.Path
		if path == "" {
			path = "farm.db"
		}
		return OpenSQLite(path)
	case DriverPostgres:
		return OpenPostgres(opts.DSN)
	case DriverMemory:
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("store: unknown driver %q", opts.Driver)
}
