package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskboard/pkg/types"
)

func newCollectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collection",
		Aliases: []string{"col"},
		Short:   "Manage collections",
	}
	cmd.AddCommand(newCollectionAddCmd(), newCollectionListCmd(), newCollectionUpdateCmd(), newCollectionDeleteCmd())
	return cmd
}

func newCollectionAddCmd() *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "add <board-id> <name>",
		Short: "Create a collection on a board",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardID, err := parseID(args[0], "board")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			c := types.Collection{BoardID: boardID, Name: args[1], Color: color}
			id, err := ws.Store().CreateCollection(ctx, c)
			if err != nil {
				return storeError(err)
			}
			c.ID = id
			if flags.jsonMode {
				return printJSON(cmd, c)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created collection %d on board %d\n", id, boardID)
			return nil
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "CSS color of the collection")
	return cmd
}

func newCollectionListCmd() *cobra.Command {
	var boardID int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List collections, optionally of one board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			var collections []types.Collection
			if boardID > 0 {
				collections, err = ws.Store().ListCollectionsByBoard(ctx, boardID)
			} else {
				collections, err = ws.Store().ListCollections(ctx)
			}
			if err != nil {
				return storeError(err)
			}
			if flags.jsonMode {
				return printJSON(cmd, collections)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tBOARD\tNAME\tCOLOR")
			for _, c := range collections {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", c.ID, c.BoardID, c.Name, c.Color)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Int64Var(&boardID, "board", 0, "only collections of this board")
	return cmd
}

func newCollectionUpdateCmd() *cobra.Command {
	var name, color string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename or recolor a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "collection")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			c, found, err := ws.Store().GetCollection(ctx, id)
			if err != nil {
				return storeError(err)
			}
			if !found {
				return userError(fmt.Errorf("collection %d: %w", id, types.ErrNotFound))
			}
			if cmd.Flags().Changed("name") {
				c.Name = name
			}
			if cmd.Flags().Changed("color") {
				c.Color = color
			}
			if err := ws.Store().UpdateCollection(ctx, c); err != nil {
				return storeError(err)
			}
			if flags.jsonMode {
				return printJSON(cmd, c)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated collection %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&color, "color", "", "new CSS color; empty clears it")
	return cmd
}

func newCollectionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a collection with its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "collection")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := ws.Store().RemoveCollection(ctx, id); err != nil {
				return storeError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted collection %d\n", id)
			return nil
		},
	}
}
