package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/taskboard/pkg/types"
)

const selectCollection = "SELECT id, board_id, names, color FROM collections"

// CreateCollection inserts a collection under an existing board.
func (b *Backend) CreateCollection(ctx context.Context, c types.Collection) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return 0, types.ErrStoreClosed
	}
	return insertCollection(ctx, b.db, c)
}

func insertCollection(ctx context.Context, q querier, c types.Collection) (int64, error) {
	res, err := q.ExecContext(ctx,
		"INSERT INTO collections (board_id, names, color) VALUES (?, ?, ?)",
		c.BoardID, c.Name, nullString(c.Color))
	if err != nil {
		return 0, fmt.Errorf("inserting collection on board %d: %w", c.BoardID, classify(err))
	}
	return res.LastInsertId()
}

// UpdateCollection replaces the name and color of a collection.
func (b *Backend) UpdateCollection(ctx context.Context, c types.Collection) error {
	if strings.TrimSpace(c.Name) == "" {
		return types.ErrInvalidName
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreClosed
	}
	res, err := b.db.ExecContext(ctx,
		"UPDATE collections SET names = ?, color = ? WHERE id = ?", c.Name, nullString(c.Color), c.ID)
	if err != nil {
		return fmt.Errorf("updating collection %d: %w", c.ID, classify(err))
	}
	return expectRow(res, "collection", c.ID)
}

// RemoveCollection deletes a collection; its tasks cascade.
func (b *Backend) RemoveCollection(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreClosed
	}
	res, err := b.db.ExecContext(ctx, "DELETE FROM collections WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("removing collection %d: %w", id, classify(err))
	}
	return expectRow(res, "collection", id)
}

// GetCollection returns the collection with the given id.
func (b *Backend) GetCollection(ctx context.Context, id int64) (types.Collection, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.Collection{}, false, types.ErrStoreClosed
	}
	c, err := scanCollection(b.db.QueryRowContext(ctx, selectCollection+" WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return types.Collection{}, false, nil
	}
	if err != nil {
		return types.Collection{}, false, fmt.Errorf("getting collection %d: %w", id, err)
	}
	return c, true, nil
}

// ListCollections returns every collection in id order.
func (b *Backend) ListCollections(ctx context.Context) ([]types.Collection, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreClosed
	}
	return queryCollections(ctx, b.db, selectCollection+" ORDER BY id")
}

// ListCollectionsByBoard returns the collections of one board in id order.
func (b *Backend) ListCollectionsByBoard(ctx context.Context, boardID int64) ([]types.Collection, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreClosed
	}
	return queryCollections(ctx, b.db, selectCollection+" WHERE board_id = ? ORDER BY id", boardID)
}

func scanCollection(row rowScanner) (types.Collection, error) {
	var c types.Collection
	var color sql.NullString
	if err := row.Scan(&c.ID, &c.BoardID, &c.Name, &color); err != nil {
		return types.Collection{}, err
	}
	c.Color = color.String
	return c, nil
}

func queryCollections(ctx context.Context, q querier, query string, args ...any) ([]types.Collection, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	collections := []types.Collection{}
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}
