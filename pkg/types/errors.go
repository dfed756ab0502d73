package types

import (
	"errors"
	"fmt"
)

// Store lifecycle errors.
var (
	ErrStoreClosed     = errors.New("store is closed")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrSchemaTooNew    = errors.New("store schema is newer than this application")
	ErrMigrationOrder  = errors.New("migration versions must be strictly increasing")
)

// Write errors.
var (
	ErrNotFound            = errors.New("entity not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrReorderConflict     = errors.New("reorder failed, previous ordering kept")
	ErrInvalidName         = errors.New("invalid name")
	ErrInvalidStatus       = errors.New("invalid task status")
	ErrInvalidOrder        = errors.New("invalid task order")
	ErrInvalidData         = errors.New("invalid entity data")
	ErrDuplicateTask       = errors.New("task listed more than once")
)

// Boundary and settings errors.
var (
	ErrLastBoard       = errors.New("cannot remove the last board")
	ErrBackupCancelled = errors.New("no file selected")
	ErrBackupOntoStore = errors.New("backup destination is the live store")
	ErrInvalidTheme    = errors.New("invalid theme")
)

// InitError reports a failure to open or migrate a store. The store is not
// usable after an InitError.
type InitError struct {
	Path string
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initializing store %s: %v", e.Path, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// IOError reports a file-level failure during backup, import or export.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
