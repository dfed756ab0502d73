package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/taskboard/pkg/types"
)

func openRawDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := openDB(context.Background(), filepath.Join(t.TempDir(), "raw.db")+dsnPragmas)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// schemaDump returns every table and index definition plus the column list
// of each table, for comparing schemas.
func schemaDump(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT type || ' ' || name || ' ' || COALESCE(sql, '') FROM sqlite_master WHERE name NOT LIKE 'sqlite_%' ORDER BY type, name")
	require.NoError(t, err)
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		require.NoError(t, rows.Scan(&s))
		out = append(out, s)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestMigrate_FreshStoreReachesLatest(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()

	version, err := migrate(ctx, db, migrations, nil)
	require.NoError(t, err)
	assert.Equal(t, latestVersion(), version)

	stored, err := readVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, latestVersion(), stored)

	for _, col := range []struct{ table, column string }{
		{"tasks", "status"},
		{"boards", "color"},
		{"collections", "color"},
	} {
		ok, err := columnExists(ctx, db, col.table, col.column)
		require.NoError(t, err)
		assert.Truef(t, ok, "%s.%s", col.table, col.column)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()

	first, err := migrate(ctx, db, migrations, nil)
	require.NoError(t, err)
	before := schemaDump(t, db)

	second, err := migrate(ctx, db, migrations, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, before, schemaDump(t, db))
}

func TestMigrate_ReentrantAfterPartialStep(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()

	base := []migration{{version: 1, name: "base", steps: []migrationStep{execDDL("CREATE TABLE IF NOT EXISTS items (id INTEGER PRIMARY KEY)")}}}
	_, err := migrate(ctx, db, base, nil)
	require.NoError(t, err)

	// A crash after the first column landed but before the version bump.
	_, err = db.Exec("ALTER TABLE items ADD COLUMN label TEXT")
	require.NoError(t, err)

	next := append(base, migration{version: 2, name: "columns", steps: []migrationStep{
		addColumn("items", "label", "TEXT"),
		addColumn("items", "weight", "INTEGER NOT NULL DEFAULT 0"),
	}})
	version, err := migrate(ctx, db, next, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	ok, err := columnExists(ctx, db, "items", "weight")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMigrate_FailedStepRollsBack(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()

	list := []migration{
		{version: 1, name: "one", steps: []migrationStep{execDDL("CREATE TABLE one (x)")}},
		{version: 2, name: "two", steps: []migrationStep{
			execDDL("CREATE TABLE two (x)"),
			execDDL("THIS IS NOT SQL"),
		}},
	}
	version, err := migrate(ctx, db, list, nil)
	require.Error(t, err)
	assert.Equal(t, 1, version)

	stored, err := readVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 1, stored, "version is bumped only with a committed step")

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE name = 'two'").Scan(&n))
	assert.Zero(t, n, "objects of a failed step must not survive")
}

func TestMigrate_SchemaTooNew(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()

	_, err := migrate(ctx, db, migrations, nil)
	require.NoError(t, err)
	_, err = db.Exec("UPDATE schema_version SET version = ?", latestVersion()+10)
	require.NoError(t, err)

	_, err = migrate(ctx, db, migrations, nil)
	assert.ErrorIs(t, err, types.ErrSchemaTooNew)
}

func TestMigrate_RejectsUnorderedList(t *testing.T) {
	db := openRawDB(t)
	list := []migration{
		{version: 2, name: "b"},
		{version: 2, name: "again"},
	}
	_, err := migrate(context.Background(), db, list, nil)
	assert.ErrorIs(t, err, types.ErrMigrationOrder)
}

func TestMigrate_LinearizesLegacyOrders(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()

	// A store written before contiguous ordering existed.
	_, err := migrate(ctx, db, migrations[:4], nil)
	require.NoError(t, err)
	for _, stmt := range []string{
		"INSERT INTO boards (id, name) VALUES (1, 'b')",
		"INSERT INTO collections (id, board_id, names) VALUES (1, 1, 'c')",
		"INSERT INTO tasks (id, collection_id, task_order, names) VALUES (1, 1, 5, 'a'), (2, 1, 5, 'b'), (3, 1, 0, 'c')",
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	_, err = migrate(ctx, db, migrations, nil)
	require.NoError(t, err)

	rows, err := db.Query("SELECT names, task_order FROM tasks ORDER BY task_order")
	require.NoError(t, err)
	defer rows.Close()
	var got []string
	for rows.Next() {
		var name string
		var order int
		require.NoError(t, rows.Scan(&name, &order))
		got = append(got, name)
		assert.Equal(t, len(got)-1, order)
	}
	assert.Equal(t, []string{"c", "a", "b"}, got)
}

func TestBackend_SchemaVersion(t *testing.T) {
	b := setupBackend(t)
	v, err := b.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, latestVersion(), v)
}
