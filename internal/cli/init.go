package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize taskboard storage",
		Long: "Create the configuration directory and config.yaml, then open the store,\n" +
			"applying pending migrations and seeding the default workspace on first run.\n" +
			"Clears the firstStart option.",
		Args: cobra.NoArgs,
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ws, closeStore, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	version, err := ws.Store().SchemaVersion(ctx)
	if err != nil {
		return sysError(err)
	}
	if first, err := ws.Settings().FirstStart(ctx); err != nil {
		return storeError(err)
	} else if first {
		if err := ws.Settings().CompleteFirstStart(ctx); err != nil {
			return storeError(err)
		}
	}
	path, _ := storePath()
	if flags.jsonMode {
		return printJSON(cmd, map[string]any{"store": path, "schema_version": version})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Taskboard initialized at %s (schema version %d)\n", path, version)
	return nil
}
