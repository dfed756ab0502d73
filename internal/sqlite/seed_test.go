package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/taskboard/pkg/types"
)

func TestSeed_FreshStore(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	boards, err := b.ListBoards(ctx)
	require.NoError(t, err)
	require.Len(t, boards, 2)
	assert.Equal(t, types.RootBoardID, boards[0].ID)

	collections, err := b.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, collections, 2)
	for _, c := range collections {
		assert.Equal(t, types.RootBoardID, c.BoardID)
	}

	tasks, err := b.ListTasksByCollection(ctx, collections[0].ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, 0, tasks[0].Order)
	assert.Equal(t, 1, tasks[1].Order)

	options, err := b.ListOptions(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, types.DefaultOptions, options)
}

func TestSeed_NotRepeatedOnReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskboard.db")
	ctx := context.Background()

	b := NewBackend()
	require.NoError(t, b.Attach(ctx, types.Config{Backend: types.BackendSQLite, Path: path}))
	require.NoError(t, b.UpdateOption(ctx, types.OptionFirstStart, "false"))
	require.NoError(t, b.Detach())

	b2 := attachAt(t, path)
	boards, err := b2.ListBoards(ctx)
	require.NoError(t, err)
	assert.Len(t, boards, 2)

	v, _, err := b2.GetOption(ctx, types.OptionFirstStart)
	require.NoError(t, err)
	assert.Equal(t, "false", v, "options are not reset")
}

func TestSeed_NotRepeatedWhenRootBoardRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskboard.db")
	ctx := context.Background()

	b := NewBackend()
	require.NoError(t, b.Attach(ctx, types.Config{Backend: types.BackendSQLite, Path: path}))
	require.NoError(t, b.RemoveBoard(ctx, types.RootBoardID))
	require.NoError(t, b.Detach())

	b2 := attachAt(t, path)
	boards, err := b2.ListBoards(ctx)
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Equal(t, "Second Tab", boards[0].Name)
}
