package sqlite

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/taskboard/pkg/types"
)

type storeContents struct {
	Boards      []types.Board
	Collections []types.Collection
	Tasks       []types.Task
	Options     []types.Option
}

func contentsOf(t *testing.T, b *Backend) storeContents {
	t.Helper()
	ctx := context.Background()
	var c storeContents
	var err error
	c.Boards, err = b.ListBoards(ctx)
	require.NoError(t, err)
	c.Collections, err = b.ListCollections(ctx)
	require.NoError(t, err)
	c.Tasks, err = b.ListTasks(ctx)
	require.NoError(t, err)
	c.Options, err = b.ListOptions(ctx)
	require.NoError(t, err)
	return c
}

func TestBackup_RoundTrip(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	_, coll := newBoardWithCollection(t, b, "Backed up")
	due := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	_, err := b.AppendTask(ctx, types.Task{CollectionID: coll, Name: "with due", DueDate: &due})
	require.NoError(t, err)
	require.NoError(t, b.CreateOption(ctx, "custom", "value"))

	dest := filepath.Join(t.TempDir(), "copy.tbdb")
	written, err := b.Backup(ctx, dest)
	require.NoError(t, err)
	assert.Equal(t, dest, written)

	restored := attachAt(t, dest)
	assert.Equal(t, contentsOf(t, b), contentsOf(t, restored))
}

func TestBackup_IntoDirectoryUsesDatedName(t *testing.T) {
	b := setupBackend(t)
	now = func() time.Time { return time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	dir := t.TempDir()
	written, err := b.Backup(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "taskboard_backup_2026_10_14.tbdb"), written)
	_, err = os.Stat(written)
	require.NoError(t, err)
}

func TestBackup_Failures(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	_, err := b.Backup(ctx, "")
	assert.ErrorIs(t, err, types.ErrBackupCancelled)

	missing := filepath.Join(t.TempDir(), "no", "such", "dir", "x.tbdb")
	_, err = b.Backup(ctx, missing)
	var ioErr *types.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.NotErrorIs(t, err, types.ErrBackupCancelled)

	boards, err := b.ListBoards(ctx)
	require.NoError(t, err, "live store still usable")
	assert.Len(t, boards, 2)
}

func TestBackup_RefusesLiveStoreFile(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	path := b.Path()

	link := filepath.Join(t.TempDir(), "linked.db")
	require.NoError(t, os.Link(path, link))

	for _, dest := range []string{
		path,
		path + "-wal",
		path + "-shm",
		filepath.Join(filepath.Dir(path), ".", filepath.Base(path)),
		link,
	} {
		_, err := b.Backup(ctx, dest)
		var ioErr *types.IOError
		require.ErrorAs(t, err, &ioErr, dest)
		assert.ErrorIs(t, err, types.ErrBackupOntoStore, dest)
	}

	id, err := b.CreateBoard(ctx, types.Board{Name: "after backup"})
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	reopened := attachAt(t, path)
	_, found, err := reopened.GetBoard(ctx, id)
	require.NoError(t, err)
	assert.True(t, found, "writes after a refused backup survive reopen")
}

// snapshotWithExtraBoard writes a backup of a fresh store plus one board
// that the live store under test does not have.
func snapshotWithExtraBoard(t *testing.T) (path string, boardID int64) {
	t.Helper()
	ctx := context.Background()
	other := setupBackend(t)
	boardID, coll := newBoardWithCollection(t, other, "From snapshot")
	appendTasks(t, other, coll, "imported")
	require.NoError(t, other.UpdateBoard(ctx, types.Board{ID: types.RootBoardID, Name: "Renamed root"}))

	path, err := other.Backup(ctx, filepath.Join(t.TempDir(), "snap.tbdb"))
	require.NoError(t, err)
	return path, boardID
}

func TestImportSnapshot_InspectOnly(t *testing.T) {
	snap, _ := snapshotWithExtraBoard(t)
	b := setupBackend(t)
	ctx := context.Background()
	before := contentsOf(t, b)

	report, err := b.ImportSnapshot(ctx, snap, types.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Boards)
	assert.Equal(t, 3, report.Collections)
	assert.Equal(t, 3, report.Tasks)
	assert.Equal(t, latestVersion(), report.SchemaVersion)
	assert.False(t, report.Merged)

	assert.Equal(t, before, contentsOf(t, b), "inspection leaves the live store untouched")

	entries, err := os.ReadDir(filepath.Dir(b.Path()))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), "import-", "snapshot copy is removed")
	}

	var attached int
	require.NoError(t, b.db.QueryRow("SELECT COUNT(*) FROM pragma_database_list WHERE name = 'snapshot'").Scan(&attached))
	assert.Zero(t, attached, "snapshot is detached")
}

func TestImportSnapshot_Merge(t *testing.T) {
	snap, boardID := snapshotWithExtraBoard(t)
	b := setupBackend(t)
	ctx := context.Background()

	// Ids 3 and 4 in the first list. The snapshot also has a task 3, in
	// its own collection, so the merge moves it and leaves a gap.
	local := appendTasks(t, b, 1, "local three", "local four")

	report, err := b.ImportSnapshot(ctx, snap, types.ImportOptions{Merge: true})
	require.NoError(t, err)
	assert.True(t, report.Merged)

	root, _, err := b.GetBoard(ctx, types.RootBoardID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed root", root.Name, "snapshot wins by id")

	imported, found, err := b.GetBoard(ctx, boardID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "From snapshot", imported.Name)

	overwritten, _, err := b.GetTask(ctx, local[0])
	require.NoError(t, err)
	assert.Equal(t, "imported", overwritten.Name)
	assert.NotEqual(t, int64(1), overwritten.CollectionID)

	kept, found, err := b.GetTask(ctx, local[1])
	require.NoError(t, err)
	require.True(t, found, "merge never deletes live rows")
	assert.Equal(t, 2, kept.Order, "gap left by the moved task is closed")
	requireContiguous(t, b)
}

func TestImportSnapshot_Failures(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	_, err := b.ImportSnapshot(ctx, "", types.ImportOptions{})
	assert.ErrorIs(t, err, types.ErrBackupCancelled)

	var ioErr *types.IOError
	_, err = b.ImportSnapshot(ctx, filepath.Join(t.TempDir(), "missing.tbdb"), types.ImportOptions{})
	require.ErrorAs(t, err, &ioErr)

	junk := filepath.Join(t.TempDir(), "junk.tbdb")
	require.NoError(t, os.WriteFile(junk, bytes.Repeat([]byte("junk "), 1024), 0o644))
	_, err = b.ImportSnapshot(ctx, junk, types.ImportOptions{Merge: true})
	require.ErrorAs(t, err, &ioErr)

	boards, err := b.ListBoards(ctx)
	require.NoError(t, err)
	assert.Len(t, boards, 2)
}

func TestImportSnapshot_RejectsForeignFiles(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.tbdb")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	unrelated := filepath.Join(dir, "unrelated.db")
	db, err := openDB(ctx, unrelated+dsnPragmas)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	for _, src := range []string{empty, unrelated} {
		report, err := b.ImportSnapshot(ctx, src, types.ImportOptions{Merge: true})
		var ioErr *types.IOError
		require.ErrorAs(t, err, &ioErr, src)
		assert.ErrorIs(t, err, types.ErrInvalidData, src)
		assert.False(t, report.Merged)
	}

	boards, err := b.ListBoards(ctx)
	require.NoError(t, err)
	assert.Len(t, boards, 2)
	entries, err := os.ReadDir(filepath.Dir(b.Path()))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), "import-", "staging copies are removed")
	}
}

func TestImportSnapshot_ReadsUncheckpointedWAL(t *testing.T) {
	other := setupBackend(t)
	boardID, coll := newBoardWithCollection(t, other, "Only in WAL")
	appendTasks(t, other, coll, "a", "b")

	b := setupBackend(t)
	ctx := context.Background()
	report, err := b.ImportSnapshot(ctx, other.Path(), types.ImportOptions{Merge: true})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Boards)
	assert.Equal(t, 4, report.Tasks)
	assert.True(t, report.Merged)

	got, found, err := b.GetBoard(ctx, boardID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Only in WAL", got.Name)
	requireContiguous(t, b)
}

func TestExportJSONL(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "export")

	require.NoError(t, b.ExportJSONL(ctx, dir))

	counts := map[string]int{}
	for _, name := range []string{BoardsJSONL, CollectionsJSONL, TasksJSONL, OptionsJSONL} {
		f, err := os.Open(filepath.Join(dir, name))
		require.NoError(t, err)
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			assert.True(t, json.Valid(scanner.Bytes()), "%s line %q", name, scanner.Text())
			counts[name]++
		}
		require.NoError(t, scanner.Err())
		f.Close()
	}
	assert.Equal(t, 2, counts[BoardsJSONL])
	assert.Equal(t, 2, counts[CollectionsJSONL])
	assert.Equal(t, 2, counts[TasksJSONL])
	assert.Equal(t, len(types.DefaultOptions), counts[OptionsJSONL])

	var task types.Task
	data, err := os.ReadFile(filepath.Join(dir, TasksJSONL))
	require.NoError(t, err)
	firstLine := bytes.SplitN(data, []byte("\n"), 2)[0]
	require.NoError(t, json.Unmarshal(firstLine, &task))
	assert.Equal(t, types.StatusPending, task.Status)
}
