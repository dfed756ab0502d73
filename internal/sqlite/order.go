package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/mesh-intelligence/taskboard/pkg/types"
)

// reorderFault, when set, is called before each row write of a reorder.
// Returning an error aborts the reorder at that row. Tests use it to
// interrupt a reorder part way.
var reorderFault func(row int) error

// AppendTask inserts t at the end of its collection.
func (b *Backend) AppendTask(ctx context.Context, t types.Task) (int64, error) {
	t.Order = 0
	if err := t.Validate(); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return 0, types.ErrStoreClosed
	}

	var id int64
	err := b.inTx(ctx, func(tx *sql.Tx) error {
		n, err := countTasks(ctx, tx, t.CollectionID)
		if err != nil {
			return err
		}
		t.Order = n
		id, err = insertTask(ctx, tx, t)
		return err
	})
	return id, err
}

// Reorder makes orderedTaskIDs the display order of collectionID.
//
// Every listed task is written with collection_id = collectionID and
// task_order = its index. Tasks already in collectionID but missing from the
// list keep their relative order after the listed ones. Each collection a
// listed task came from is compacted. All writes share one transaction.
func (b *Backend) Reorder(ctx context.Context, collectionID int64, orderedTaskIDs []int64) error {
	seen := make(map[int64]bool, len(orderedTaskIDs))
	for _, id := range orderedTaskIDs {
		if seen[id] {
			return fmt.Errorf("task %d: %w", id, types.ErrDuplicateTask)
		}
		seen[id] = true
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreClosed
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", types.ErrReorderConflict, err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM collections WHERE id = ?", collectionID).Scan(&exists); err != nil {
		return fmt.Errorf("looking up collection %d: %w", collectionID, err)
	}
	if exists == 0 {
		return fmt.Errorf("collection %d: %w", collectionID, types.ErrNotFound)
	}

	sources := make(map[int64]bool)
	for _, id := range orderedTaskIDs {
		var from int64
		err := tx.QueryRowContext(ctx, "SELECT collection_id FROM tasks WHERE id = ?", id).Scan(&from)
		if err == sql.ErrNoRows {
			return fmt.Errorf("task %d: %w", id, types.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("looking up task %d: %w", id, err)
		}
		if from != collectionID {
			sources[from] = true
		}
	}

	current, err := taskIDsInOrder(ctx, tx, collectionID)
	if err != nil {
		return err
	}
	final := append([]int64(nil), orderedTaskIDs...)
	for _, id := range current {
		if !seen[id] {
			final = append(final, id)
		}
	}

	for i, id := range final {
		if reorderFault != nil {
			if err := reorderFault(i); err != nil {
				return fmt.Errorf("%w: %w", types.ErrReorderConflict, err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE tasks SET collection_id = ?, task_order = ? WHERE id = ?", collectionID, i, id,
		); err != nil {
			return fmt.Errorf("%w: writing task %d: %w", types.ErrReorderConflict, id, classify(err))
		}
	}

	from := make([]int64, 0, len(sources))
	for id := range sources {
		from = append(from, id)
	}
	sort.Slice(from, func(i, j int) bool { return from[i] < from[j] })
	for _, id := range from {
		if err := renumber(ctx, tx, id); err != nil {
			return fmt.Errorf("%w: %w", types.ErrReorderConflict, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing: %w", types.ErrReorderConflict, err)
	}
	return nil
}

func countTasks(ctx context.Context, q querier, collectionID int64) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks WHERE collection_id = ?", collectionID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting tasks in collection %d: %w", collectionID, err)
	}
	return n, nil
}

// taskIDsInOrder returns the task ids of a collection in display order,
// breaking ties by id.
func taskIDsInOrder(ctx context.Context, q querier, collectionID int64) ([]int64, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id FROM tasks WHERE collection_id = ? ORDER BY task_order, id", collectionID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks of collection %d: %w", collectionID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning task id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// renumber rewrites task_order of a collection to 0..n-1, keeping the current
// relative order. Rows already at their index are not written.
func renumber(ctx context.Context, q querier, collectionID int64) error {
	ids, err := taskIDsInOrder(ctx, q, collectionID)
	if err != nil {
		return err
	}
	for i, id := range ids {
		if _, err := q.ExecContext(ctx,
			"UPDATE tasks SET task_order = ? WHERE id = ? AND task_order != ?", i, id, i,
		); err != nil {
			return fmt.Errorf("renumbering task %d: %w", id, classify(err))
		}
	}
	return nil
}
