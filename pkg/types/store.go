package types

import "context"

// BoardStore provides CRUD over boards. Removing a board cascades to its
// collections and their tasks.
type BoardStore interface {
	// CreateBoard inserts b and returns the store-assigned id. b.ID is ignored.
	CreateBoard(ctx context.Context, b Board) (int64, error)

	// UpdateBoard replaces the name and color of the board with b.ID.
	// Returns ErrNotFound if no such board exists.
	UpdateBoard(ctx context.Context, b Board) error

	// RemoveBoard deletes the board and everything under it.
	// Returns ErrNotFound if no such board exists.
	RemoveBoard(ctx context.Context, id int64) error

	// GetBoard returns the board with the given id. found is false when no
	// board matches; that is not an error.
	GetBoard(ctx context.Context, id int64) (b Board, found bool, err error)

	// ListBoards returns every board in id order.
	ListBoards(ctx context.Context) ([]Board, error)
}

// CollectionStore provides CRUD over collections.
type CollectionStore interface {
	// CreateCollection inserts c and returns the new id. A BoardID that does
	// not reference a board fails with ErrConstraintViolation.
	CreateCollection(ctx context.Context, c Collection) (int64, error)

	// UpdateCollection replaces the name and color of the collection with c.ID.
	// The board of a collection never changes.
	UpdateCollection(ctx context.Context, c Collection) error

	// RemoveCollection deletes the collection and its tasks.
	RemoveCollection(ctx context.Context, id int64) error

	GetCollection(ctx context.Context, id int64) (c Collection, found bool, err error)
	ListCollections(ctx context.Context) ([]Collection, error)
	ListCollectionsByBoard(ctx context.Context, boardID int64) ([]Collection, error)
}

// TaskStore provides CRUD over tasks. Task listings are sorted by task_order.
type TaskStore interface {
	// CreateTask inserts t at t.Order, which must equal the current number of
	// tasks in the collection (ErrInvalidOrder otherwise). The store does not
	// compute the order; use Orderer.AppendTask for that.
	CreateTask(ctx context.Context, t Task) (int64, error)

	// UpdateTask replaces name, description, due date and status of the task
	// with t.ID. CollectionID and Order are ignored: moves go through
	// Orderer.Reorder.
	UpdateTask(ctx context.Context, t Task) error

	// RemoveTask deletes the task and compacts the order of its former
	// collection.
	RemoveTask(ctx context.Context, id int64) error

	GetTask(ctx context.Context, id int64) (t Task, found bool, err error)
	ListTasks(ctx context.Context) ([]Task, error)
	ListTasksByCollection(ctx context.Context, collectionID int64) ([]Task, error)
	ListTasksByBoard(ctx context.Context, boardID int64) ([]Task, error)
}

// Orderer maintains task_order as a contiguous permutation per collection.
type Orderer interface {
	// AppendTask inserts t at the end of its collection and returns the new id.
	AppendTask(ctx context.Context, t Task) (int64, error)

	// Reorder rewrites the order of collectionID to match orderedTaskIDs.
	// Listed tasks that live in other collections move into collectionID and
	// their former collections are compacted. The whole re-index is atomic;
	// a failure part way returns ErrReorderConflict and leaves the previous
	// ordering in place.
	Reorder(ctx context.Context, collectionID int64, orderedTaskIDs []int64) error
}

// OptionStore is the flat key/value settings bag. Values are opaque strings.
type OptionStore interface {
	// CreateOption inserts a new key. An existing key fails with
	// ErrConstraintViolation; use UpdateOption instead.
	CreateOption(ctx context.Context, key, value string) error

	// UpdateOption sets the value of an existing key.
	// Returns ErrNotFound if the key does not exist.
	UpdateOption(ctx context.Context, key, value string) error

	RemoveOption(ctx context.Context, key string) error
	GetOption(ctx context.Context, key string) (value string, found bool, err error)
	ListOptions(ctx context.Context) ([]Option, error)
}

// ImportOptions controls ImportSnapshot.
type ImportOptions struct {
	// Merge upserts the snapshot rows into the live store (last write wins by
	// id). Without Merge the import only inspects the snapshot.
	Merge bool
}

// ImportReport describes an inspected or merged snapshot.
type ImportReport struct {
	Snapshot      string `json:"snapshot"`
	SchemaVersion int    `json:"schema_version"`
	Boards        int    `json:"boards"`
	Collections   int    `json:"collections"`
	Tasks         int    `json:"tasks"`
	Options       int    `json:"options"`
	Merged        bool   `json:"merged"`
}

// Snapshotter exports and imports whole-store snapshots.
type Snapshotter interface {
	// Backup writes a consistent single-file copy of the store to dest and
	// returns the written path. A directory dest receives a dated file name.
	// An empty dest returns ErrBackupCancelled.
	Backup(ctx context.Context, dest string) (string, error)

	// ImportSnapshot copies src next to the live store, brings it to the
	// current schema and attaches it for inspection, merging only when
	// opts.Merge is set.
	ImportSnapshot(ctx context.Context, src string, opts ImportOptions) (ImportReport, error)

	// ExportJSONL writes one JSONL file per table into dir.
	ExportJSONL(ctx context.Context, dir string) error
}

// Store is the full persistent entity/ordering store.
type Store interface {
	BoardStore
	CollectionStore
	TaskStore
	Orderer
	OptionStore
	Snapshotter

	// SchemaVersion returns the applied migration version.
	SchemaVersion(ctx context.Context) (int, error)

	// Close releases the store. Close is idempotent; afterwards every
	// operation returns ErrStoreClosed.
	Close() error
}
