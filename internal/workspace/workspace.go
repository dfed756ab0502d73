// Package workspace is the caller-facing layer over a taskboard store. It
// holds the policies that sit above the store: at least one board always
// exists, the open board is remembered, and task moves always go through
// the ordering path.
package workspace

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/taskboard/internal/settings"
	"github.com/mesh-intelligence/taskboard/pkg/types"
)

// Workspace wraps a store with boundary policies.
type Workspace struct {
	store    types.Store
	settings *settings.Settings
}

// New returns a Workspace over store.
func New(store types.Store) *Workspace {
	return &Workspace{store: store, settings: settings.New(store)}
}

// Store returns the underlying store.
func (w *Workspace) Store() types.Store {
	return w.store
}

// Settings returns the typed settings of the store.
func (w *Workspace) Settings() *settings.Settings {
	return w.settings
}

// CurrentBoard returns the board to show: the last opened board when it
// still exists, else the root board, else the first board. It is a single
// lookup with fallbacks, never a retry. Returns ErrNotFound only when the
// store has no board at all.
func (w *Workspace) CurrentBoard(ctx context.Context) (types.Board, error) {
	if id, ok, err := w.settings.LastOpenBoard(ctx); err != nil {
		return types.Board{}, err
	} else if ok {
		b, found, err := w.store.GetBoard(ctx, id)
		if err != nil {
			return types.Board{}, err
		}
		if found {
			return b, nil
		}
	}

	b, found, err := w.store.GetBoard(ctx, types.RootBoardID)
	if err != nil {
		return types.Board{}, err
	}
	if found {
		return b, nil
	}

	boards, err := w.store.ListBoards(ctx)
	if err != nil {
		return types.Board{}, err
	}
	if len(boards) == 0 {
		return types.Board{}, fmt.Errorf("no boards: %w", types.ErrNotFound)
	}
	return boards[0], nil
}

// OpenBoard makes id the current board.
func (w *Workspace) OpenBoard(ctx context.Context, id int64) (types.Board, error) {
	b, found, err := w.store.GetBoard(ctx, id)
	if err != nil {
		return types.Board{}, err
	}
	if !found {
		return types.Board{}, fmt.Errorf("board %d: %w", id, types.ErrNotFound)
	}
	if err := w.settings.SetLastOpenBoard(ctx, id); err != nil {
		return types.Board{}, fmt.Errorf("remembering board %d: %w", id, err)
	}
	return b, nil
}

// RemoveBoard deletes a board with everything under it. The last remaining
// board cannot be removed. Removing the open board forgets it.
func (w *Workspace) RemoveBoard(ctx context.Context, id int64) error {
	boards, err := w.store.ListBoards(ctx)
	if err != nil {
		return err
	}
	if len(boards) == 1 && boards[0].ID == id {
		return types.ErrLastBoard
	}
	if err := w.store.RemoveBoard(ctx, id); err != nil {
		return err
	}

	open, ok, err := w.settings.LastOpenBoard(ctx)
	if err != nil {
		return err
	}
	if ok && open == id {
		return w.settings.ClearLastOpenBoard(ctx)
	}
	return nil
}

// AddTask appends a pending task to the end of its collection.
func (w *Workspace) AddTask(ctx context.Context, t types.Task) (int64, error) {
	if t.Status == "" {
		t.Status = types.StatusPending
	}
	return w.store.AppendTask(ctx, t)
}

// MoveTask places a task at position in collectionID, which may be its
// current collection or another one. Positions past the end append. The
// move is one Reorder of the destination, so both collections stay
// contiguous.
func (w *Workspace) MoveTask(ctx context.Context, taskID, collectionID int64, position int) error {
	if position < 0 {
		return types.ErrInvalidOrder
	}
	if _, found, err := w.store.GetTask(ctx, taskID); err != nil {
		return err
	} else if !found {
		return fmt.Errorf("task %d: %w", taskID, types.ErrNotFound)
	}

	dest, err := w.store.ListTasksByCollection(ctx, collectionID)
	if err != nil {
		return err
	}
	order := make([]int64, 0, len(dest)+1)
	for _, t := range dest {
		if t.ID != taskID {
			order = append(order, t.ID)
		}
	}
	if position > len(order) {
		position = len(order)
	}
	order = append(order[:position], append([]int64{taskID}, order[position:]...)...)
	return w.store.Reorder(ctx, collectionID, order)
}

// SetDone marks a task done or pending. Ordering is not affected.
func (w *Workspace) SetDone(ctx context.Context, taskID int64, done bool) error {
	t, found, err := w.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("task %d: %w", taskID, types.ErrNotFound)
	}
	t.Status = types.StatusPending
	if done {
		t.Status = types.StatusDone
	}
	return w.store.UpdateTask(ctx, t)
}

// CollectionView is a collection with its tasks in display order.
type CollectionView struct {
	types.Collection
	Tasks []types.Task `json:"tasks"`
}

// BoardView is a board with its collections.
type BoardView struct {
	types.Board
	Collections []CollectionView `json:"collections"`
}

// View assembles a board with every collection and task under it.
func (w *Workspace) View(ctx context.Context, boardID int64) (BoardView, error) {
	b, found, err := w.store.GetBoard(ctx, boardID)
	if err != nil {
		return BoardView{}, err
	}
	if !found {
		return BoardView{}, fmt.Errorf("board %d: %w", boardID, types.ErrNotFound)
	}
	collections, err := w.store.ListCollectionsByBoard(ctx, boardID)
	if err != nil {
		return BoardView{}, err
	}
	view := BoardView{Board: b, Collections: make([]CollectionView, 0, len(collections))}
	for _, c := range collections {
		tasks, err := w.store.ListTasksByCollection(ctx, c.ID)
		if err != nil {
			return BoardView{}, err
		}
		view.Collections = append(view.Collections, CollectionView{Collection: c, Tasks: tasks})
	}
	return view, nil
}
