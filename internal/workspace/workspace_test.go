package workspace

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/taskboard/pkg/sqlite"
	"github.com/mesh-intelligence/taskboard/pkg/types"
)

func setupWorkspace(t *testing.T) *Workspace {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "taskboard.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store)
}

func taskNames(t *testing.T, w *Workspace, collectionID int64) []string {
	t.Helper()
	tasks, err := w.Store().ListTasksByCollection(context.Background(), collectionID)
	require.NoError(t, err)
	names := make([]string, 0, len(tasks))
	for i, task := range tasks {
		require.Equal(t, i, task.Order)
		names = append(names, task.Name)
	}
	return names
}

func TestCurrentBoard(t *testing.T) {
	w := setupWorkspace(t)
	ctx := context.Background()

	b, err := w.CurrentBoard(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.RootBoardID, b.ID, "root board by default")

	opened, err := w.OpenBoard(ctx, 2)
	require.NoError(t, err)
	b, err = w.CurrentBoard(ctx)
	require.NoError(t, err)
	assert.Equal(t, opened, b)

	// A stale lastOpenBoard falls back without retrying.
	require.NoError(t, w.Settings().SetLastOpenBoard(ctx, 424242))
	b, err = w.CurrentBoard(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.RootBoardID, b.ID)

	require.NoError(t, w.Store().RemoveBoard(ctx, types.RootBoardID))
	b, err = w.CurrentBoard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.ID, "first remaining board")

	_, err = w.OpenBoard(ctx, 424242)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestRemoveBoard_KeepsLastBoard(t *testing.T) {
	w := setupWorkspace(t)
	ctx := context.Background()

	_, err := w.OpenBoard(ctx, 2)
	require.NoError(t, err)
	require.NoError(t, w.RemoveBoard(ctx, 2))

	_, found, err := w.Settings().LastOpenBoard(ctx)
	require.NoError(t, err)
	assert.False(t, found, "removing the open board forgets it")

	assert.ErrorIs(t, w.RemoveBoard(ctx, types.RootBoardID), types.ErrLastBoard)
	boards, err := w.Store().ListBoards(ctx)
	require.NoError(t, err)
	assert.Len(t, boards, 1)

	assert.ErrorIs(t, w.RemoveBoard(ctx, 424242), types.ErrNotFound)
}

func TestMoveTask(t *testing.T) {
	w := setupWorkspace(t)
	ctx := context.Background()
	s := w.Store()

	boardID, err := s.CreateBoard(ctx, types.Board{Name: "A"})
	require.NoError(t, err)
	l, err := s.CreateCollection(ctx, types.Collection{BoardID: boardID, Name: "L"})
	require.NoError(t, err)
	m, err := s.CreateCollection(ctx, types.Collection{BoardID: boardID, Name: "M"})
	require.NoError(t, err)

	var ids []int64
	for _, name := range []string{"t1", "t2", "t3"} {
		id, err := w.AddTask(ctx, types.Task{CollectionID: l, Name: name})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.NoError(t, w.MoveTask(ctx, ids[2], l, 0))
	assert.Equal(t, []string{"t3", "t1", "t2"}, taskNames(t, w, l))

	require.NoError(t, w.MoveTask(ctx, ids[1], m, 10))
	assert.Equal(t, []string{"t2"}, taskNames(t, w, m))
	assert.Equal(t, []string{"t3", "t1"}, taskNames(t, w, l))

	require.NoError(t, w.MoveTask(ctx, ids[2], m, 0))
	assert.Equal(t, []string{"t3", "t2"}, taskNames(t, w, m))
	assert.Equal(t, []string{"t1"}, taskNames(t, w, l))

	assert.ErrorIs(t, w.MoveTask(ctx, ids[0], m, -1), types.ErrInvalidOrder)
	assert.ErrorIs(t, w.MoveTask(ctx, 424242, m, 0), types.ErrNotFound)
}

func TestSetDone(t *testing.T) {
	w := setupWorkspace(t)
	ctx := context.Background()

	require.NoError(t, w.SetDone(ctx, 1, true))
	task, _, err := w.Store().GetTask(ctx, 1)
	require.NoError(t, err)
	assert.True(t, task.Done())
	assert.Equal(t, 0, task.Order)

	require.NoError(t, w.SetDone(ctx, 1, false))
	task, _, err = w.Store().GetTask(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, task.Status)

	assert.ErrorIs(t, w.SetDone(ctx, 424242, true), types.ErrNotFound)
}

func TestView(t *testing.T) {
	w := setupWorkspace(t)
	ctx := context.Background()

	view, err := w.View(ctx, types.RootBoardID)
	require.NoError(t, err)
	require.Len(t, view.Collections, 2)
	assert.Len(t, view.Collections[0].Tasks, 2)
	assert.Empty(t, view.Collections[1].Tasks)

	_, err = w.View(ctx, 424242)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
