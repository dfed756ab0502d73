package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/taskboard/pkg/types"
)

// BackupExt is the file extension of backups written into a directory.
const BackupExt = ".tbdb"

// snapshotSchema is the name the import snapshot is attached under.
const snapshotSchema = "snapshot"

// ErrNotSnapshot is returned when an imported file holds no taskboard
// tables.
var ErrNotSnapshot = fmt.Errorf("not a taskboard snapshot: %w", types.ErrInvalidData)

// now is overridden in tests to pin backup file names.
var now = time.Now

// BackupFileName returns the dated file name used when Backup is given a
// directory.
func BackupFileName(t time.Time) string {
	return "taskboard_backup_" + t.Format("2006_01_02") + BackupExt
}

// Backup writes a consistent copy of the whole store to dest using
// VACUUM INTO. The copy is first written to a staging file beside dest and
// renamed into place, so a failed backup never leaves a partial file at dest
// and never touches the live store.
func (b *Backend) Backup(ctx context.Context, dest string) (string, error) {
	if dest == "" {
		return "", types.ErrBackupCancelled
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return "", types.ErrStoreClosed
	}

	dest, err := filepath.Abs(dest)
	if err != nil {
		return "", &types.IOError{Op: "resolving backup path", Path: dest, Err: err}
	}
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		dest = filepath.Join(dest, BackupFileName(now()))
	}
	if isStoreFile(dest, b.config.Path) {
		return "", &types.IOError{Op: "writing backup", Path: dest, Err: types.ErrBackupOntoStore}
	}

	staging := filepath.Join(filepath.Dir(dest), ".backup-"+uuid.NewString()+".tmp")
	if _, err := b.db.ExecContext(ctx, "VACUUM INTO ?", staging); err != nil {
		os.Remove(staging)
		return "", &types.IOError{Op: "writing backup", Path: dest, Err: err}
	}
	if err := os.Rename(staging, dest); err != nil {
		os.Remove(staging)
		return "", &types.IOError{Op: "writing backup", Path: dest, Err: err}
	}
	b.log.Printf("backup written to %s", dest)
	return dest, nil
}

// ImportSnapshot copies src into the store directory, migrates the copy to
// the current schema and attaches it to the live connection. Row counts of
// the snapshot are always reported. With opts.Merge the snapshot rows are
// upserted into the live store in one transaction, last write winning by id,
// and every collection is re-linearized afterwards. The copy is detached and
// removed on every path; without Merge the live store is unchanged.
func (b *Backend) ImportSnapshot(ctx context.Context, src string, opts types.ImportOptions) (types.ImportReport, error) {
	if src == "" {
		return types.ImportReport{}, types.ErrBackupCancelled
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ImportReport{}, types.ErrStoreClosed
	}

	copyPath := filepath.Join(filepath.Dir(b.config.Path), "import-"+uuid.NewString()+".db")
	defer removeStoreFile(copyPath)
	if err := copySnapshot(src, copyPath); err != nil {
		return types.ImportReport{}, &types.IOError{Op: "copying snapshot", Path: src, Err: err}
	}

	report := types.ImportReport{Snapshot: src}
	version, err := prepareSnapshot(ctx, copyPath)
	if err != nil {
		return report, &types.IOError{Op: "reading snapshot", Path: src, Err: err}
	}
	report.SchemaVersion = version

	// ATTACH is per connection, so the whole import runs on one.
	conn, err := b.db.Conn(ctx)
	if err != nil {
		return report, fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "ATTACH DATABASE ? AS "+snapshotSchema, copyPath); err != nil {
		return report, &types.IOError{Op: "attaching snapshot", Path: src, Err: err}
	}
	defer func() {
		if _, err := conn.ExecContext(context.WithoutCancel(ctx), "DETACH DATABASE "+snapshotSchema); err != nil {
			b.log.Printf("detaching snapshot: %v", err)
		}
	}()

	if err := countSnapshot(ctx, conn, &report); err != nil {
		return report, err
	}
	b.log.Printf("inspected snapshot %s: %d boards, %d collections, %d tasks, %d options",
		src, report.Boards, report.Collections, report.Tasks, report.Options)

	if !opts.Merge {
		return report, nil
	}
	if err := mergeSnapshot(ctx, conn); err != nil {
		return report, err
	}
	report.Merged = true
	b.log.Printf("merged snapshot %s", src)
	return report, nil
}

// prepareSnapshot brings the copied snapshot to the current schema with the
// same migration engine used by Attach and returns the version it had
// before. Rows in the copy are never seeded.
func prepareSnapshot(ctx context.Context, path string) (int, error) {
	db, err := openDB(ctx, path+dsnPragmas)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	before, err := storedVersion(ctx, db)
	if err != nil {
		return 0, err
	}
	// A legacy store may predate schema_version but always has boards.
	if before == 0 {
		ok, err := hasTable(ctx, db, "boards")
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ErrNotSnapshot
		}
	}
	if _, err := migrate(ctx, db, migrations, nil); err != nil {
		return before, err
	}
	// Leave no WAL next to the copy; ATTACH reads the main file.
	if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return before, fmt.Errorf("checkpointing snapshot: %w", err)
	}
	return before, nil
}

// storedVersion is readVersion for a file that may predate the
// schema_version table.
func storedVersion(ctx context.Context, q querier) (int, error) {
	ok, err := hasTable(ctx, q, "schema_version")
	if err != nil || !ok {
		return 0, err
	}
	return readVersion(ctx, q)
}

func hasTable(ctx context.Context, q querier, name string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("reading schema: %w", err)
	}
	return n > 0, nil
}

func countSnapshot(ctx context.Context, q querier, report *types.ImportReport) error {
	counts := []struct {
		table string
		dest  *int
	}{
		{"boards", &report.Boards},
		{"collections", &report.Collections},
		{"tasks", &report.Tasks},
		{"options", &report.Options},
	}
	for _, c := range counts {
		if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+snapshotSchema+"."+c.table).Scan(c.dest); err != nil {
			return fmt.Errorf("counting snapshot %s: %w", c.table, err)
		}
	}
	return nil
}

// mergeStatements upsert snapshot rows parents first. DO UPDATE is used
// instead of REPLACE so that no live row is deleted and no cascade fires.
// The WHERE true disambiguates the upsert clause from a join.
var mergeStatements = []string{
	`INSERT INTO boards (id, name, color)
     SELECT id, name, color FROM snapshot.boards WHERE true
     ON CONFLICT(id) DO UPDATE SET name = excluded.name, color = excluded.color`,
	`INSERT INTO collections (id, board_id, names, color)
     SELECT id, board_id, names, color FROM snapshot.collections WHERE true
     ON CONFLICT(id) DO UPDATE SET board_id = excluded.board_id, names = excluded.names, color = excluded.color`,
	`INSERT INTO tasks (id, collection_id, task_order, names, descriptions, due_date, status)
     SELECT id, collection_id, task_order, names, descriptions, due_date, status FROM snapshot.tasks WHERE true
     ON CONFLICT(id) DO UPDATE SET collection_id = excluded.collection_id, task_order = excluded.task_order,
         names = excluded.names, descriptions = excluded.descriptions, due_date = excluded.due_date,
         status = excluded.status`,
	`INSERT INTO options (key, value)
     SELECT key, value FROM snapshot.options WHERE true
     ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
	linearizeTaskOrder,
}

func mergeSnapshot(ctx context.Context, conn *sql.Conn) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning merge: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range mergeStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("merging snapshot: %w", classify(err))
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing merge: %w", classify(err))
	}
	return nil
}

// removeStoreFile removes a store file and its WAL side files.
func removeStoreFile(path string) {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		os.Remove(p)
	}
}

// isStoreFile reports whether path names the store file at store or one of
// its WAL side files, either literally or as the same file on disk.
func isStoreFile(path, store string) bool {
	path = filepath.Clean(path)
	target, statErr := os.Stat(path)
	for _, p := range []string{store, store + "-wal", store + "-shm"} {
		p = filepath.Clean(p)
		if path == p {
			return true
		}
		if statErr != nil {
			continue
		}
		if info, err := os.Stat(p); err == nil && os.SameFile(target, info) {
			return true
		}
	}
	return false
}

// copySnapshot copies src to dst together with its WAL file, whose
// committed pages are not yet in the main file. The shared-memory index is
// rebuilt by SQLite and never copied.
func copySnapshot(src, dst string) error {
	if err := copyFile(src, dst); err != nil {
		return err
	}
	if _, err := os.Stat(src + "-wal"); err == nil {
		return copyFile(src+"-wal", dst+"-wal")
	} else if !os.IsNotExist(err) {
		return err
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return errors.New("snapshot is a directory")
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
