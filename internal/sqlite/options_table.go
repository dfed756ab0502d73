package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/taskboard/pkg/types"
)

// CreateOption inserts a new key. A key that already exists violates the
// primary key and fails with ErrConstraintViolation.
func (b *Backend) CreateOption(ctx context.Context, key, value string) error {
	if key == "" {
		return types.ErrInvalidName
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreClosed
	}
	if _, err := b.db.ExecContext(ctx, "INSERT INTO options (key, value) VALUES (?, ?)", key, value); err != nil {
		return fmt.Errorf("creating option %s: %w", key, classify(err))
	}
	return nil
}

// UpdateOption sets the value of an existing key.
func (b *Backend) UpdateOption(ctx context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreClosed
	}
	res, err := b.db.ExecContext(ctx, "UPDATE options SET value = ? WHERE key = ?", value, key)
	if err != nil {
		return fmt.Errorf("updating option %s: %w", key, classify(err))
	}
	return expectRow(res, "option", key)
}

// RemoveOption deletes a key.
func (b *Backend) RemoveOption(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreClosed
	}
	res, err := b.db.ExecContext(ctx, "DELETE FROM options WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("removing option %s: %w", key, err)
	}
	return expectRow(res, "option", key)
}

// GetOption returns the value stored under key.
func (b *Backend) GetOption(ctx context.Context, key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return "", false, types.ErrStoreClosed
	}
	var value string
	err := b.db.QueryRowContext(ctx, "SELECT value FROM options WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting option %s: %w", key, err)
	}
	return value, true, nil
}

// ListOptions returns every option sorted by key.
func (b *Backend) ListOptions(ctx context.Context) ([]types.Option, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreClosed
	}
	return queryOptions(ctx, b.db, "SELECT key, value FROM options ORDER BY key")
}

func queryOptions(ctx context.Context, q querier, query string, args ...any) ([]types.Option, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying options: %w", err)
	}
	defer rows.Close()

	options := []types.Option{}
	for rows.Next() {
		var o types.Option
		if err := rows.Scan(&o.Key, &o.Value); err != nil {
			return nil, fmt.Errorf("scanning option: %w", err)
		}
		options = append(options, o)
	}
	return options, rows.Err()
}
