package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskboard/internal/workspace"
	"github.com/mesh-intelligence/taskboard/pkg/sqlite"
	"github.com/mesh-intelligence/taskboard/pkg/types"
)

// openWorkspace opens the store at the resolved path. The caller must call
// the returned close function.
func openWorkspace(ctx context.Context) (*workspace.Workspace, func(), error) {
	path, err := storePath()
	if err != nil {
		return nil, nil, userError(fmt.Errorf("resolve store path: %w", err))
	}
	store, err := sqlite.Open(ctx, path, state.logger)
	if err != nil {
		return nil, nil, sysError(err)
	}
	closeFn := func() {
		if err := store.Close(); err != nil {
			state.logger.Printf("closing store: %v", err)
		}
	}
	return workspace.New(store), closeFn, nil
}

// userErrors are store errors caused by the request rather than the system.
var userErrors = []error{
	types.ErrNotFound,
	types.ErrConstraintViolation,
	types.ErrReorderConflict,
	types.ErrInvalidName,
	types.ErrInvalidStatus,
	types.ErrInvalidOrder,
	types.ErrInvalidData,
	types.ErrDuplicateTask,
	types.ErrLastBoard,
	types.ErrBackupCancelled,
	types.ErrBackupOntoStore,
	types.ErrInvalidTheme,
}

// storeError wraps err with the exit code it deserves.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return userError(err)
		}
	}
	return sysError(err)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, userError(fmt.Errorf("invalid %s id %q", what, s))
	}
	return id, nil
}

func parseIDs(args []string, what string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := parseID(a, what)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// dateParser understands phrases such as "tomorrow" or "next friday at 5pm".
var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// parseDue accepts RFC3339, a plain 2006-01-02 date or an English phrase
// relative to now. An empty string means no due date.
func parseDue(s string, now time.Time) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return &t, nil
	}
	r, err := dateParser.Parse(s, now)
	if err != nil {
		return nil, userError(fmt.Errorf("parse due date %q: %w", s, err))
	}
	if r == nil {
		return nil, userError(fmt.Errorf("parse due date %q: %w", s, types.ErrInvalidData))
	}
	t := r.Time
	return &t, nil
}

func formatDue(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}
