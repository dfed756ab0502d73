package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskboard/internal/settings"
	"github.com/mesh-intelligence/taskboard/pkg/types"
)

func newOptionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "option",
		Aliases: []string{"opt"},
		Short:   "Read and write stored options",
	}
	cmd.AddCommand(newOptionListCmd(), newOptionGetCmd(), newOptionSetCmd(), newOptionDeleteCmd())
	return cmd
}

func newOptionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every option",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			opts, err := ws.Store().ListOptions(ctx)
			if err != nil {
				return storeError(err)
			}
			if flags.jsonMode {
				return printJSON(cmd, opts)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tTYPE\tVALUE")
			for _, o := range opts {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", o.Key, settings.KindOf(o.Key), o.Value)
			}
			return tw.Flush()
		},
	}
}

func newOptionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value of an option",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			v, found, err := ws.Store().GetOption(ctx, args[0])
			if err != nil {
				return storeError(err)
			}
			if !found {
				return userError(fmt.Errorf("option %q: %w", args[0], types.ErrNotFound))
			}
			if flags.jsonMode {
				return printJSON(cmd, types.Option{Key: args[0], Value: v})
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func newOptionSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Create or update an option",
		Long: "Create or update an option. Known boolean keys (syncActive,\n" +
			"notifications, firstStart) and integer keys (lastOpenBoard) are\n" +
			"validated and stored in canonical form.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := ws.Settings().Set(ctx, args[0], args[1]); err != nil {
				return storeError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])
			return nil
		},
	}
}

func newOptionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove an option",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := ws.Store().RemoveOption(ctx, args[0]); err != nil {
				return storeError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted option %s\n", args[0])
			return nil
		},
	}
}
