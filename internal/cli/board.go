package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskboard/pkg/types"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Manage boards",
	}
	cmd.AddCommand(newBoardAddCmd(), newBoardListCmd(), newBoardUpdateCmd(),
		newBoardDeleteCmd(), newBoardOpenCmd(), newBoardShowCmd())
	return cmd
}

func newBoardAddCmd() *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			id, err := ws.Store().CreateBoard(ctx, types.Board{Name: args[0], Color: color})
			if err != nil {
				return storeError(err)
			}
			if flags.jsonMode {
				return printJSON(cmd, types.Board{ID: id, Name: args[0], Color: color})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created board %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "CSS color of the board")
	return cmd
}

func newBoardListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			boards, err := ws.Store().ListBoards(ctx)
			if err != nil {
				return storeError(err)
			}
			if flags.jsonMode {
				return printJSON(cmd, boards)
			}
			current, err := ws.CurrentBoard(ctx)
			if err != nil {
				return storeError(err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\tID\tNAME\tCOLOR")
			for _, b := range boards {
				marker := ""
				if b.ID == current.ID {
					marker = "*"
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", marker, b.ID, b.Name, b.Color)
			}
			return tw.Flush()
		},
	}
}

func newBoardUpdateCmd() *cobra.Command {
	var name, color string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename or recolor a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "board")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			b, found, err := ws.Store().GetBoard(ctx, id)
			if err != nil {
				return storeError(err)
			}
			if !found {
				return userError(fmt.Errorf("board %d: %w", id, types.ErrNotFound))
			}
			if cmd.Flags().Changed("name") {
				b.Name = name
			}
			if cmd.Flags().Changed("color") {
				b.Color = color
			}
			if err := ws.Store().UpdateBoard(ctx, b); err != nil {
				return storeError(err)
			}
			if flags.jsonMode {
				return printJSON(cmd, b)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated board %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&color, "color", "", "new CSS color; empty clears it")
	return cmd
}

func newBoardDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a board with its collections and tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "board")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := ws.RemoveBoard(ctx, id); err != nil {
				return storeError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted board %d\n", id)
			return nil
		},
	}
}

func newBoardOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <id>",
		Short: "Make a board the current board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "board")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			b, err := ws.OpenBoard(ctx, id)
			if err != nil {
				return storeError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opened board %d (%s)\n", b.ID, b.Name)
			return nil
		},
	}
}

func newBoardShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a board with its collections and tasks (default: current board)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			var id int64
			if len(args) == 1 {
				if id, err = parseID(args[0], "board"); err != nil {
					return err
				}
			} else {
				current, err := ws.CurrentBoard(ctx)
				if err != nil {
					return storeError(err)
				}
				id = current.ID
			}

			view, err := ws.View(ctx, id)
			if err != nil {
				return storeError(err)
			}
			if flags.jsonMode {
				return printJSON(cmd, view)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderBoard(view))
			return nil
		},
	}
}
