// Package sqlite provides the public API for the SQLite taskboard store.
// It exposes the factory functions while keeping the implementation
// internal.
package sqlite

import (
	"context"
	"log"

	"github.com/mesh-intelligence/taskboard/internal/sqlite"
	"github.com/mesh-intelligence/taskboard/pkg/types"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(ctx, types.Config{
//	    Backend: types.BackendSQLite,
//	    Path:    "/home/me/.local/share/taskboard/taskboard.db",
//	})
//	defer backend.Detach()
func NewBackend() *sqlite.Backend {
	return sqlite.NewBackend()
}

// Open attaches a store at the absolute path and returns it ready for use.
// Open fails with *types.InitError when the file cannot be opened or
// migrated; the store must not be used in that case.
func Open(ctx context.Context, path string, logger *log.Logger) (types.Store, error) {
	b := sqlite.NewBackend()
	err := b.Attach(ctx, types.Config{
		Backend: types.BackendSQLite,
		Path:    path,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}
