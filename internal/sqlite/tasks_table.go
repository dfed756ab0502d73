package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/taskboard/pkg/types"
)

const selectTask = "SELECT id, collection_id, task_order, names, descriptions, due_date, status FROM tasks"

// CreateTask inserts a task at the order the caller supplies. The order must
// be the next contiguous value of the collection.
func (b *Backend) CreateTask(ctx context.Context, t types.Task) (int64, error) {
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
		if t.Order != n {
			return fmt.Errorf("%w: collection %d expects order %d, got %d", types.ErrInvalidOrder, t.CollectionID, n, t.Order)
		}
		id, err = insertTask(ctx, tx, t)
		return err
	})
	return id, err
}

func insertTask(ctx context.Context, q querier, t types.Task) (int64, error) {
	status := t.Status
	if status == "" {
		status = types.StatusPending
	}
	res, err := q.ExecContext(ctx,
		`INSERT INTO tasks (collection_id, task_order, names, descriptions, due_date, status)
         VALUES (?, ?, ?, ?, ?, ?)`,
		t.CollectionID, t.Order, nullString(t.Name), nullString(t.Description), formatDue(t.DueDate), string(status))
	if err != nil {
		return 0, fmt.Errorf("inserting task in collection %d: %w", t.CollectionID, classify(err))
	}
	return res.LastInsertId()
}

// UpdateTask replaces name, description, due date and status.
// Collection and order are left alone.
func (b *Backend) UpdateTask(ctx context.Context, t types.Task) error {
	if !t.Status.Valid() {
		return types.ErrInvalidStatus
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreClosed
	}
	res, err := b.db.ExecContext(ctx,
		"UPDATE tasks SET names = ?, descriptions = ?, due_date = ?, status = ? WHERE id = ?",
		nullString(t.Name), nullString(t.Description), formatDue(t.DueDate), string(t.Status), t.ID)
	if err != nil {
		return fmt.Errorf("updating task %d: %w", t.ID, classify(err))
	}
	return expectRow(res, "task", t.ID)
}

// RemoveTask deletes a task and closes the gap it leaves in its collection.
func (b *Backend) RemoveTask(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreClosed
	}
	return b.inTx(ctx, func(tx *sql.Tx) error {
		var collectionID int64
		err := tx.QueryRowContext(ctx, "SELECT collection_id FROM tasks WHERE id = ?", id).Scan(&collectionID)
		if err == sql.ErrNoRows {
			return fmt.Errorf("task %d: %w", id, types.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("looking up task %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id); err != nil {
			return fmt.Errorf("removing task %d: %w", id, classify(err))
		}
		return renumber(ctx, tx, collectionID)
	})
}

// GetTask returns the task with the given id.
func (b *Backend) GetTask(ctx context.Context, id int64) (types.Task, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.Task{}, false, types.ErrStoreClosed
	}
	t, err := scanTask(b.db.QueryRowContext(ctx, selectTask+" WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return types.Task{}, false, nil
	}
	if err != nil {
		return types.Task{}, false, fmt.Errorf("getting task %d: %w", id, err)
	}
	return t, true, nil
}

// ListTasks returns every task sorted by task_order, then collection.
func (b *Backend) ListTasks(ctx context.Context) ([]types.Task, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreClosed
	}
	return queryTasks(ctx, b.db, selectTask+" ORDER BY task_order, collection_id, id")
}

// ListTasksByCollection returns the tasks of one collection in display order.
func (b *Backend) ListTasksByCollection(ctx context.Context, collectionID int64) ([]types.Task, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreClosed
	}
	return queryTasks(ctx, b.db, selectTask+" WHERE collection_id = ? ORDER BY task_order, id", collectionID)
}

// ListTasksByBoard returns the tasks of every collection on a board, sorted
// by task_order.
func (b *Backend) ListTasksByBoard(ctx context.Context, boardID int64) ([]types.Task, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreClosed
	}
	return queryTasks(ctx, b.db,
		selectTask+" WHERE collection_id IN (SELECT id FROM collections WHERE board_id = ?) ORDER BY task_order, collection_id, id",
		boardID)
}

func scanTask(row rowScanner) (types.Task, error) {
	var t types.Task
	var name, desc, due sql.NullString
	var status string
	if err := row.Scan(&t.ID, &t.CollectionID, &t.Order, &name, &desc, &due, &status); err != nil {
		return types.Task{}, err
	}
	t.Name = name.String
	t.Description = desc.String
	t.Status = types.TaskStatus(status)
	if due.Valid && due.String != "" {
		parsed, err := time.Parse(time.RFC3339, due.String)
		if err != nil {
			return types.Task{}, fmt.Errorf("parsing task %d due_date: %w", t.ID, err)
		}
		t.DueDate = &parsed
	}
	return t, nil
}

func queryTasks(ctx context.Context, q querier, query string, args ...any) ([]types.Task, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	tasks := []types.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func formatDue(due *time.Time) sql.NullString {
	if due == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: due.UTC().Format(time.RFC3339), Valid: true}
}
