package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskboard/pkg/types"
)

// now is overridden in tests to pin relative due dates.
var now = time.Now

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(newTaskAddCmd(), newTaskListCmd(), newTaskGetCmd(), newTaskUpdateCmd(),
		newTaskStatusCmd("done", "Mark a task done", true),
		newTaskStatusCmd("reopen", "Mark a task pending", false),
		newTaskDeleteCmd(), newTaskMoveCmd())
	return cmd
}

func newTaskAddCmd() *cobra.Command {
	var desc, due string
	cmd := &cobra.Command{
		Use:   "add <collection-id> <name>",
		Short: "Append a task to a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			collectionID, err := parseID(args[0], "collection")
			if err != nil {
				return err
			}
			dueDate, err := parseDue(due, now())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			id, err := ws.AddTask(ctx, types.Task{
				CollectionID: collectionID,
				Name:         args[1],
				Description:  desc,
				DueDate:      dueDate,
			})
			if err != nil {
				return storeError(err)
			}
			if flags.jsonMode {
				t, _, err := ws.Store().GetTask(ctx, id)
				if err != nil {
					return storeError(err)
				}
				return printJSON(cmd, t)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %d in collection %d\n", id, collectionID)
			return nil
		},
	}
	cmd.Flags().StringVar(&desc, "desc", "", "description")
	cmd.Flags().StringVar(&due, "due", "", `due date: RFC3339, 2006-01-02 or a phrase like "next friday"`)
	return cmd
}

func newTaskListCmd() *cobra.Command {
	var collectionID, boardID int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			var tasks []types.Task
			switch {
			case collectionID > 0:
				tasks, err = ws.Store().ListTasksByCollection(ctx, collectionID)
			case boardID > 0:
				tasks, err = ws.Store().ListTasksByBoard(ctx, boardID)
			default:
				tasks, err = ws.Store().ListTasks(ctx)
			}
			if err != nil {
				return storeError(err)
			}
			if flags.jsonMode {
				return printJSON(cmd, tasks)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCOLLECTION\tORDER\tSTATUS\tDUE\tNAME")
			for _, t := range tasks {
				fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%s\n", t.ID, t.CollectionID, t.Order, t.Status, formatDue(t.DueDate), t.Name)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Int64Var(&collectionID, "collection", 0, "only tasks of this collection")
	cmd.Flags().Int64Var(&boardID, "board", 0, "only tasks of this board")
	return cmd
}

func newTaskGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			t, found, err := ws.Store().GetTask(ctx, id)
			if err != nil {
				return storeError(err)
			}
			if !found {
				return userError(fmt.Errorf("task %d: %w", id, types.ErrNotFound))
			}
			if flags.jsonMode {
				return printJSON(cmd, t)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Task %d: %s\n", t.ID, t.Name)
			fmt.Fprintf(out, "  collection: %d (position %d)\n", t.CollectionID, t.Order)
			fmt.Fprintf(out, "  status:     %s\n", t.Status)
			if t.DueDate != nil {
				fmt.Fprintf(out, "  due:        %s\n", formatDue(t.DueDate))
			}
			if t.Description != "" {
				fmt.Fprintf(out, "  %s\n", t.Description)
			}
			return nil
		},
	}
}

func newTaskUpdateCmd() *cobra.Command {
	var name, desc, due, status string
	var clearDue bool
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit the fields of a task (use move to change its position)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			t, found, err := ws.Store().GetTask(ctx, id)
			if err != nil {
				return storeError(err)
			}
			if !found {
				return userError(fmt.Errorf("task %d: %w", id, types.ErrNotFound))
			}
			if cmd.Flags().Changed("name") {
				t.Name = name
			}
			if cmd.Flags().Changed("desc") {
				t.Description = desc
			}
			if cmd.Flags().Changed("status") {
				if t.Status, err = types.ParseTaskStatus(status); err != nil {
					return userError(err)
				}
			}
			if clearDue {
				t.DueDate = nil
			} else if cmd.Flags().Changed("due") {
				if t.DueDate, err = parseDue(due, now()); err != nil {
					return err
				}
			}
			if err := ws.Store().UpdateTask(ctx, t); err != nil {
				return storeError(err)
			}
			if flags.jsonMode {
				return printJSON(cmd, t)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&desc, "desc", "", "new description")
	cmd.Flags().StringVar(&due, "due", "", "new due date")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "remove the due date")
	cmd.Flags().StringVar(&status, "status", "", "pending or done")
	return cmd
}

func newTaskStatusCmd(use, short string, done bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := ws.SetDone(ctx, id, done); err != nil {
				return storeError(err)
			}
			status := types.StatusPending
			if done {
				status = types.StatusDone
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %d is %s\n", id, status)
			return nil
		},
	}
}

func newTaskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := ws.Store().RemoveTask(ctx, id); err != nil {
				return storeError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
			return nil
		},
	}
}

func newTaskMoveCmd() *cobra.Command {
	var position int
	cmd := &cobra.Command{
		Use:   "move <id> <collection-id>",
		Short: "Move a task to a position in a collection (default: the end)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			collectionID, err := parseID(args[1], "collection")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			pos := position
			if !cmd.Flags().Changed("position") {
				pos = int(^uint(0) >> 1)
			}
			if err := ws.MoveTask(ctx, id, collectionID, pos); err != nil {
				return storeError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved task %d to collection %d\n", id, collectionID)
			return nil
		},
	}
	cmd.Flags().IntVar(&position, "position", 0, "zero-based position in the destination")
	return cmd
}

func newReorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <collection-id> <task-id>...",
		Short: "Set the complete display order of a collection",
		Long: "Rewrite the order of a collection to the listed task ids. Tasks listed\n" +
			"from other collections move into it; their former collections are\n" +
			"compacted. The whole re-index is applied atomically.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collectionID, err := parseID(args[0], "collection")
			if err != nil {
				return err
			}
			ids, err := parseIDs(args[1:], "task")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := ws.Store().Reorder(ctx, collectionID, ids); err != nil {
				return storeError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reordered collection %d\n", collectionID)
			return nil
		},
	}
}
