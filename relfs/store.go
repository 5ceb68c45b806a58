// Package relfs implements the vfs.Filesystem contract over a SQLite
// database: one process-durable, single-writer backing per repository
// clone, chunked into fixed-size rows per spec.md §4. Its connection
// and migration handling follows shoal's internal/provisioner/store
// package: a pragma-laden DSN, a bounded connection pool, and a
// migrate-then-serve Open sequence.
package relfs

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

const defaultBusyTimeout = 5 * time.Second

// Options configures Open. The zero value is valid and selects the
// same defaults shoal's store.Open hardcodes.
type Options struct {
	// BusyTimeout bounds how long a writer waits on SQLITE_BUSY before
	// giving up. Zero selects defaultBusyTimeout.
	BusyTimeout time.Duration
	// MaxOpenConns bounds the connection pool. Zero selects 8.
	MaxOpenConns int
	// MaxIdleConns bounds idle pool connections. Zero selects 4.
	MaxIdleConns int
	// Logger receives structured diagnostics (schema migration,
	// lifecycle events). A nil Logger falls back to slog.Default().
	Logger *slog.Logger
}

func (o *Options) withDefaults() *Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.BusyTimeout == 0 {
		out.BusyTimeout = defaultBusyTimeout
	}
	if out.MaxOpenConns == 0 {
		out.MaxOpenConns = 8
	}
	if out.MaxIdleConns == 0 {
		out.MaxIdleConns = 4
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}

// Store is the persistent, SQL-backed vfs.Filesystem implementation.
// One Store serves exactly one repository clone's worth of data and
// assumes a single writer, per spec.md §3.5/Non-goals.
type Store struct {
	db      *sql.DB
	logger  *slog.Logger
	metrics *storeMetrics
}

// Open opens (or creates) the SQLite database at path, applies
// connection pragmas, runs the schema detection and migration sequence
// of spec.md §4.2, and returns a ready Store.
func Open(ctx context.Context, path string, opts *Options) (*Store, error) {
	o := opts.withDefaults()

	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)",
		path, int(o.BusyTimeout.Milliseconds()),
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetConnMaxLifetime(0)
	db.SetMaxOpenConns(o.MaxOpenConns)
	db.SetMaxIdleConns(o.MaxIdleConns)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{
		db:      db,
		logger:  o.Logger,
		metrics: newStoreMetrics(),
	}

	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
