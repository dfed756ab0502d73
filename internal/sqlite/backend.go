// Package sqlite implements the SQLite storage backend for taskboard.
//
// A Backend owns one store file. Attach opens it with foreign keys enforced
// for the whole connection lifetime, runs the migration engine and seeds a
// default workspace on a fresh store. Every entity, ordering, settings and
// snapshot operation is a method on Backend.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/taskboard/pkg/types"
)

var _ types.Store = (*Backend)(nil)

// Connection pragmas applied by the driver to every new connection.
const dsnPragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"

// Backend implements types.Store on a single SQLite file.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	log      *log.Logger
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{log: log.New(io.Discard, "", 0)}
}

// Attach opens the store file named by config.Path, migrates it to the
// latest schema and seeds the default workspace when the store is empty.
// Any failure is returned as *types.InitError and leaves the backend
// detached. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(ctx context.Context, config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	fail := func(err error) error {
		return &types.InitError{Path: config.Path, Err: err}
	}

	if err := config.Validate(); err != nil {
		return fail(err)
	}
	if config.Logger != nil {
		b.log = config.Logger
	}

	if err := os.MkdirAll(filepath.Dir(config.Path), 0o755); err != nil {
		return fail(fmt.Errorf("creating store directory: %w", err))
	}

	db, err := openDB(ctx, config.Path+dsnPragmas)
	if err != nil {
		return fail(err)
	}

	version, err := migrate(ctx, db, migrations, b.log)
	if err != nil {
		db.Close()
		return fail(err)
	}

	seeded, err := seedWorkspace(ctx, db)
	if err != nil {
		db.Close()
		return fail(fmt.Errorf("seeding workspace: %w", err))
	}
	if seeded {
		b.log.Printf("seeded default workspace in %s", config.Path)
	}

	b.db = db
	b.config = config
	b.attached = true
	b.log.Printf("opened %s at schema version %d", config.Path, version)
	return nil
}

// openDB opens a single-connection pool and checks that foreign keys are
// enforced on it.
func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer per process; one connection keeps ATTACH and pragmas on the
	// same session.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	var fk int
	if err := db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
		db.Close()
		return nil, fmt.Errorf("reading foreign_keys pragma: %w", err)
	}
	if fk != 1 {
		db.Close()
		return nil, fmt.Errorf("foreign key enforcement is not available")
	}
	return db, nil
}

// Detach releases all resources held by the backend.
// After Detach, all operations return ErrStoreClosed. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if _, err := b.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		b.log.Printf("checkpointing WAL: %v", err)
	}
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	b.db = nil
	b.attached = false
	return nil
}

// Close implements types.Store. It is Detach.
func (b *Backend) Close() error {
	return b.Detach()
}

// Path returns the store file path, or "" when detached.
func (b *Backend) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return ""
	}
	return b.config.Path
}

// SchemaVersion returns the applied migration version.
func (b *Backend) SchemaVersion(ctx context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return 0, types.ErrStoreClosed
	}
	return readVersion(ctx, b.db)
}

// querier is the subset of *sql.DB, *sql.Conn and *sql.Tx used by helpers
// that run both inside and outside transactions.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// inTx runs fn inside one transaction; fn's error rolls everything back.
// The caller must hold b.mu.
func (b *Backend) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", classify(err))
	}
	return nil
}

// nullString maps "" to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
