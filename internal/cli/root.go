// Package cli implements the taskboard command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskboard/internal/config"
	"github.com/mesh-intelligence/taskboard/internal/logging"
	"github.com/mesh-intelligence/taskboard/internal/paths"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

var flags rootFlags

// runtimeState is filled by the root PersistentPreRunE.
type runtimeState struct {
	configDir string
	cfg       config.Config
	logger    *log.Logger
	logCloser io.Closer
}

var state runtimeState

// NewRootCmd creates the top-level "taskboard" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "taskboard",
		Short: "Boards, collections and tasks in a local store",
		Long: "Taskboard keeps boards, their collections and ordered tasks in a single\n" +
			"SQLite file, migrating it as the application evolves.",
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadState(cmd)
		},
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory holding the store file (default: platform data dir)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newBoardCmd())
	root.AddCommand(newCollectionCmd())
	root.AddCommand(newTaskCmd())
	root.AddCommand(newReorderCmd())
	root.AddCommand(newOptionCmd())
	root.AddCommand(newBackupCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newExportCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	if err := run(NewRootCmd()); err != nil {
		fmt.Fprintln(os.Stderr, "taskboard:", err)
		os.Exit(exitCode(err))
	}
}

// run executes root and releases the log file whether or not the command
// failed. Cobra skips post-run hooks after a RunE error.
func run(root *cobra.Command) error {
	err := root.Execute()
	if closeErr := closeLog(); closeErr != nil && err == nil {
		err = sysError(fmt.Errorf("close log: %w", closeErr))
	}
	return err
}

func closeLog() error {
	if state.logCloser == nil {
		return nil
	}
	err := state.logCloser.Close()
	state.logCloser = nil
	return err
}

func loadState(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		return userError(fmt.Errorf("load config: %w", err))
	}
	logger, closer, err := logging.New(logging.Options{
		File:   cfg.LogFile,
		Debug:  cfg.LogLevel == config.LogLevelDebug,
		Stderr: cmd.ErrOrStderr(),
	})
	if err != nil {
		return sysError(fmt.Errorf("open log: %w", err))
	}
	state = runtimeState{configDir: configDir, cfg: cfg, logger: logger, logCloser: closer}
	return nil
}

// storePath resolves the absolute store file path following
// --data-dir > config data_dir > TASKBOARD_DATA_DIR > platform default.
func storePath() (string, error) {
	dataDir, err := paths.ResolveDataDir(flags.dataDir, state.cfg.DataDir)
	if err != nil {
		return "", err
	}
	return paths.StorePath(dataDir, state.cfg.DBFile)
}

// cliError carries the process exit code of a failed command.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func userError(err error) error { return &cliError{code: exitUserError, err: err} }
func sysError(err error) error  { return &cliError{code: exitSysError, err: err} }

func exitCode(err error) int {
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	// Cobra argument and flag errors.
	return exitUserError
}
