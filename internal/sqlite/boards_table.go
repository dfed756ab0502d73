package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/taskboard/pkg/types"
)

// CreateBoard inserts a board and returns its id.
func (b *Backend) CreateBoard(ctx context.Context, board types.Board) (int64, error) {
	if err := board.Validate(); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return 0, types.ErrStoreClosed
	}
	return insertBoard(ctx, b.db, board)
}

func insertBoard(ctx context.Context, q querier, board types.Board) (int64, error) {
	res, err := q.ExecContext(ctx,
		"INSERT INTO boards (name, color) VALUES (?, ?)", board.Name, nullString(board.Color))
	if err != nil {
		return 0, fmt.Errorf("inserting board: %w", classify(err))
	}
	return res.LastInsertId()
}

// UpdateBoard replaces the name and color of an existing board.
func (b *Backend) UpdateBoard(ctx context.Context, board types.Board) error {
	if err := board.Validate(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreClosed
	}
	res, err := b.db.ExecContext(ctx,
		"UPDATE boards SET name = ?, color = ? WHERE id = ?", board.Name, nullString(board.Color), board.ID)
	if err != nil {
		return fmt.Errorf("updating board %d: %w", board.ID, classify(err))
	}
	return expectRow(res, "board", board.ID)
}

// RemoveBoard deletes a board. Collections and tasks go with it through the
// ON DELETE CASCADE foreign keys, inside the same statement.
func (b *Backend) RemoveBoard(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreClosed
	}
	res, err := b.db.ExecContext(ctx, "DELETE FROM boards WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("removing board %d: %w", id, classify(err))
	}
	return expectRow(res, "board", id)
}

// GetBoard returns the board with the given id.
func (b *Backend) GetBoard(ctx context.Context, id int64) (types.Board, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.Board{}, false, types.ErrStoreClosed
	}
	board, err := scanBoard(b.db.QueryRowContext(ctx,
		"SELECT id, name, color FROM boards WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return types.Board{}, false, nil
	}
	if err != nil {
		return types.Board{}, false, fmt.Errorf("getting board %d: %w", id, err)
	}
	return board, true, nil
}

// ListBoards returns all boards in id order.
func (b *Backend) ListBoards(ctx context.Context) ([]types.Board, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreClosed
	}
	return queryBoards(ctx, b.db, "SELECT id, name, color FROM boards ORDER BY id")
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBoard(row rowScanner) (types.Board, error) {
	var board types.Board
	var color sql.NullString
	if err := row.Scan(&board.ID, &board.Name, &color); err != nil {
		return types.Board{}, err
	}
	board.Color = color.String
	return board, nil
}

func queryBoards(ctx context.Context, q querier, query string, args ...any) ([]types.Board, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying boards: %w", err)
	}
	defer rows.Close()

	boards := []types.Board{}
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning board: %w", err)
		}
		boards = append(boards, board)
	}
	return boards, rows.Err()
}

// expectRow turns a zero-row update or delete into ErrNotFound.
func expectRow(res sql.Result, kind string, id any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %v: %w", kind, id, types.ErrNotFound)
	}
	return nil
}
