package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration and store path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := storePath()
			if err != nil {
				return userError(err)
			}
			if flags.jsonMode {
				return printJSON(cmd, map[string]any{
					"config_dir": state.configDir,
					"config":     state.cfg,
					"store":      path,
				})
			}
			data, err := yaml.Marshal(state.cfg.File)
			if err != nil {
				return sysError(err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# config dir: %s\n# store: %s\n", state.configDir, path)
			_, err = out.Write(data)
			return err
		},
	})
	return cmd
}
