package sqlite

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/taskboard/pkg/types"
)

// Export file names, one per table.
const (
	BoardsJSONL      = "boards.jsonl"
	CollectionsJSONL = "collections.jsonl"
	TasksJSONL       = "tasks.jsonl"
	OptionsJSONL     = "options.jsonl"
)

// ExportJSONL writes every table to dir as JSONL, one record per line.
// All rows are read in a single transaction so the files describe one point
// in time. Each file is replaced atomically.
func (b *Backend) ExportJSONL(ctx context.Context, dir string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.ErrStoreClosed
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning export: %w", err)
	}
	defer tx.Rollback()

	boards, err := queryBoards(ctx, tx, "SELECT id, name, color FROM boards ORDER BY id")
	if err != nil {
		return err
	}
	collections, err := queryCollections(ctx, tx, selectCollection+" ORDER BY id")
	if err != nil {
		return err
	}
	tasks, err := queryTasks(ctx, tx, selectTask+" ORDER BY collection_id, task_order, id")
	if err != nil {
		return err
	}
	options, err := queryOptions(ctx, tx, "SELECT key, value FROM options ORDER BY key")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &types.IOError{Op: "creating export directory", Path: dir, Err: err}
	}
	files := []struct {
		name    string
		records []json.RawMessage
	}{
		{BoardsJSONL, nil},
		{CollectionsJSONL, nil},
		{TasksJSONL, nil},
		{OptionsJSONL, nil},
	}
	if files[0].records, err = marshalAll(boards); err != nil {
		return err
	}
	if files[1].records, err = marshalAll(collections); err != nil {
		return err
	}
	if files[2].records, err = marshalAll(tasks); err != nil {
		return err
	}
	if files[3].records, err = marshalAll(options); err != nil {
		return err
	}

	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := writeJSONL(path, f.records); err != nil {
			return &types.IOError{Op: "exporting", Path: path, Err: err}
		}
	}
	b.log.Printf("exported %d boards, %d collections, %d tasks, %d options to %s",
		len(boards), len(collections), len(tasks), len(options), dir)
	return nil
}

func marshalAll[T any](rows []T) ([]json.RawMessage, error) {
	records := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("marshaling record: %w", err)
		}
		records = append(records, data)
	}
	return records, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
