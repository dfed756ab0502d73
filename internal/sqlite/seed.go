package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/taskboard/pkg/types"
)

// seedBoard describes a board created on first run with its collections.
type seedBoard struct {
	name        string
	collections []seedCollection
}

type seedCollection struct {
	name  string
	tasks []seedTask
}

type seedTask struct {
	name        string
	description string
}

// defaultWorkspace is the workspace created on a fresh store: two boards, two
// collections under the first board and two tasks in the first collection.
var defaultWorkspace = []seedBoard{
	{
		name: "First Tab",
		collections: []seedCollection{
			{
				name: "First List",
				tasks: []seedTask{
					{"First Task", "This is the first task"},
					{"Second Task", "This is the second task"},
				},
			},
			{name: "Second List"},
		},
	},
	{name: "Second Tab"},
}

// seedWorkspace creates the default options and workspace in a store that
// has no boards at all. A store whose root board was deleted keeps its other
// boards and is not reseeded. It reports whether anything was seeded.
// Seeding is one transaction.
func seedWorkspace(ctx context.Context, db *sql.DB) (bool, error) {
	var boards int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM boards").Scan(&boards); err != nil {
		return false, fmt.Errorf("counting boards: %w", err)
	}
	if boards > 0 {
		return false, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, o := range types.DefaultOptions {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO options (key, value) VALUES (?, ?) ON CONFLICT(key) DO NOTHING",
			o.Key, o.Value,
		); err != nil {
			return false, fmt.Errorf("seeding option %s: %w", o.Key, err)
		}
	}

	for _, sb := range defaultWorkspace {
		boardID, err := insertBoard(ctx, tx, types.Board{Name: sb.name})
		if err != nil {
			return false, fmt.Errorf("seeding board %s: %w", sb.name, err)
		}
		for _, sc := range sb.collections {
			collID, err := insertCollection(ctx, tx, types.Collection{BoardID: boardID, Name: sc.name})
			if err != nil {
				return false, fmt.Errorf("seeding collection %s: %w", sc.name, err)
			}
			for i, st := range sc.tasks {
				_, err := insertTask(ctx, tx, types.Task{
					CollectionID: collID,
					Order:        i,
					Name:         st.name,
					Description:  st.description,
					Status:       types.StatusPending,
				})
				if err != nil {
					return false, fmt.Errorf("seeding task %s: %w", st.name, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing seed transaction: %w", err)
	}
	return true, nil
}
