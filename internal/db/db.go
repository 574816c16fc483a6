// Package db is the persistent store: subscriptions, videos, watched marks,
// per-channel view times and settings, kept in a single SQLite file.
package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // The database driver
)

const driverName = "sqlite"

var (
	// ErrConflict is returned when a subscription with the same id or url exists.
	ErrConflict = errors.New("already exists")
	// ErrNotFound is returned when a delete or lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrTooManyParams is returned when an id list exceeds maxQueryParams.
	ErrTooManyParams = errors.New("too many query parameters")
)

func init() {
	sqlx.BindDriver(driverName, sqlx.QUESTION)
}

// Options configures Open.
type Options struct {
	// BusyTimeout bounds how long a statement waits on the file lock.
	BusyTimeout time.Duration
	// LegacyDir holds the old JSON files imported once on first open. Empty disables the import.
	LegacyDir string
}

// Store wraps the database handle. It is safe for concurrent use; SQLite's
// file lock serialises writers and busy_timeout bounds the wait.
type Store struct {
	db        *sqlx.DB
	legacyDir string
	now       func() time.Time
}

// Open opens (creating if needed) the database at path and brings the schema up to date.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	busy := opts.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_txlock=immediate",
		path, busy.Milliseconds())

	conn, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := NewWithDB(conn)
	s.legacyDir = opts.LegacyDir
	if err := s.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("Database ready at %s", path)
	return s, nil
}

// NewWithDB wraps an already-open handle without touching the schema.
func NewWithDB(conn *sqlx.DB) *Store {
	return &Store{db: conn, now: time.Now}
}

// Close closes the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a transaction, committing on success.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
