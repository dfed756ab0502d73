package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/mesh-intelligence/taskboard/pkg/types"
)

// migration is one versioned schema change. All steps of a migration and the
// version bump commit in a single transaction.
type migration struct {
	version int
	name    string
	steps   []migrationStep
}

// migrationStep is one schema-altering operation. Steps must be re-entrant:
// running a step whose effect already exists is a no-op.
type migrationStep func(ctx context.Context, tx *sql.Tx) error

// execDDL runs a statement that is re-entrant on its own
// (CREATE ... IF NOT EXISTS, idempotent backfills).
func execDDL(stmt string) migrationStep {
	return func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, stmt)
		return err
	}
}

// addColumn adds table.column unless the column is already present.
func addColumn(table, column, definition string) migrationStep {
	return func(ctx context.Context, tx *sql.Tx) error {
		exists, err := columnExists(ctx, tx, table, column)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition)); err != nil {
			return fmt.Errorf("add column %s.%s: %w", table, column, err)
		}
		return nil
	}
}

func columnExists(ctx context.Context, q querier, table, column string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, column,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	return n > 0, nil
}

// readVersion returns the applied version, 0 for a store that has never been
// migrated.
func readVersion(ctx context.Context, q querier) (int, error) {
	var version int
	err := q.QueryRowContext(ctx, "SELECT version FROM schema_version WHERE id = 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

func writeVersion(ctx context.Context, tx *sql.Tx, version int) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (id, version, applied_at) VALUES (1, ?, ?)
         ON CONFLICT(id) DO UPDATE SET version = excluded.version, applied_at = excluded.applied_at`,
		version, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing schema version %d: %w", version, err)
	}
	return nil
}

// validateMigrations checks that versions are positive and strictly increasing.
func validateMigrations(list []migration) error {
	prev := 0
	for _, m := range list {
		if m.version <= prev {
			return fmt.Errorf("%w: version %d after %d", types.ErrMigrationOrder, m.version, prev)
		}
		prev = m.version
	}
	return nil
}

// migrate brings db from its applied version to the last version in list and
// returns the resulting version. Each pending migration runs in its own
// transaction together with its version bump, so a crash leaves the store at
// the last fully committed version. A store already at the latest version is
// untouched. A store newer than list fails with ErrSchemaTooNew.
func migrate(ctx context.Context, db *sql.DB, list []migration, logger *log.Logger) (int, error) {
	if err := validateMigrations(list); err != nil {
		return 0, err
	}
	if _, err := db.ExecContext(ctx, createSchemaVersion); err != nil {
		return 0, fmt.Errorf("creating schema_version: %w", err)
	}

	current, err := readVersion(ctx, db)
	if err != nil {
		return 0, err
	}
	latest := 0
	if len(list) > 0 {
		latest = list[len(list)-1].version
	}
	if current > latest {
		return current, fmt.Errorf("%w: store at %d, latest known %d", types.ErrSchemaTooNew, current, latest)
	}

	for _, m := range list {
		if m.version <= current {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return current, fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		current = m.version
		if logger != nil {
			logger.Printf("applied migration %d (%s)", m.version, m.name)
		}
	}
	return current, nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning migration transaction: %w", err)
	}
	defer tx.Rollback()

	for i, step := range m.steps {
		if err := step(ctx, tx); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	if err := writeVersion(ctx, tx, m.version); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration: %w", err)
	}
	return nil
}
