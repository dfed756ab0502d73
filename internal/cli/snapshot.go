package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskboard/pkg/types"
)

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup <dest>",
		Short: "Write a consistent copy of the store",
		Long: "Write a single-file copy of the store to dest. When dest is a directory\n" +
			"the copy is named taskboard_backup_YYYY_MM_DD.tbdb.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			path, err := ws.Store().Backup(ctx, args[0])
			if err != nil {
				return storeError(err)
			}
			if flags.jsonMode {
				return printJSON(cmd, map[string]string{"backup": path})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", path)
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	var merge bool
	cmd := &cobra.Command{
		Use:   "import <snapshot>",
		Short: "Inspect a snapshot, optionally merging it into the store",
		Long: "Copy the snapshot next to the store, migrate the copy to the current\n" +
			"schema and report its contents. With --merge, rows from the snapshot\n" +
			"overwrite local rows with the same id and task order is recompacted.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return userError(fmt.Errorf("snapshot %s: %w", args[0], err))
			}
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			report, err := ws.Store().ImportSnapshot(ctx, args[0], types.ImportOptions{Merge: merge})
			if err != nil {
				return storeError(err)
			}
			if flags.jsonMode {
				return printJSON(cmd, report)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Snapshot %s (schema version %d)\n", report.Snapshot, report.SchemaVersion)
			fmt.Fprintf(out, "  boards: %d  collections: %d  tasks: %d  options: %d\n",
				report.Boards, report.Collections, report.Tasks, report.Options)
			if report.Merged {
				fmt.Fprintln(out, "Merged into the store")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&merge, "merge", false, "merge the snapshot into the store")
	return cmd
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Export every table as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, closeStore, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := ws.Store().ExportJSONL(ctx, args[0]); err != nil {
				return storeError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", args[0])
			return nil
		},
	}
}
