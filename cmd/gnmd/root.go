package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/genemede/gnmd/pkg/config"
	"github.com/genemede/gnmd/pkg/logging"
	"github.com/genemede/gnmd/pkg/storage"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// envLogLevel overrides logging.verbosity from the config file.
const envLogLevel = "GNMD_LOG_LEVEL"

// skipConfig marks commands that must run even when the config file is broken.
const skipConfig = "gnmd/skip-config"

// app is the state shared by every command of one invocation.
type app struct {
	configPath string
	logLevel   string

	cfg     *config.Config
	logger  *logging.Logger
	level   logging.Level
	console bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "gnmd",
		Short: "Validate and repair genemede entity files",
		Long: `gnmd works with genemede entity files: JSON arrays of metadata records
that all share the same fixed set of keys.

Validation checks that every record has exactly the schema keys. Repair
backfills missing keys, replaces invalid GUIDs and normalizes datetimes.
Every write is preceded by a timestamped backup of the file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $GNMD_CONFIG or ~/.gnmd/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log verbosity: quiet, normal, verbose, debug (default from config or $GNMD_LOG_LEVEL)")

	rootCmd.AddCommand(
		newValidateCmd(a),
		newFixCmd(a),
		newFindCmd(a),
		newShowCmd(a),
		newCreateCmd(a),
		newBackupCmd(a),
		newGUIDCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// init loads the config and sets up logging. Log entries go to a session
// file when logging.dir is set and to stderr otherwise.
func (a *app) init(cmd *cobra.Command) error {
	if cmd.Annotations[skipConfig] == "true" {
		a.cfg = config.DefaultConfig()
	} else {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	a.level = a.cfg.Level()
	verbosity := os.Getenv(envLogLevel)
	if a.logLevel != "" {
		verbosity = a.logLevel
	}
	if verbosity != "" {
		level, err := logging.ParseLevel(verbosity)
		if err != nil {
			return err
		}
		a.level = level
	}

	if a.cfg.Logging.Dir != "" {
		logging.SetLogDirectory(a.cfg.Logging.Dir)
		logger, err := logging.NewLogger("gnmd")
		if err != nil {
			// NewLogger already fell back to stderr.
			a.console = true
		}
		a.logger = logger
	} else {
		a.logger = logging.New("gnmd", cmd.ErrOrStderr(), a.level)
		a.console = true
	}
	a.logger.SetLevel(a.level)
	a.logger.Debugf("gnmd %s, session %s", version, a.logger.SessionID())
	return nil
}

// storeLogger is handed to storage. Commands print change lines themselves,
// so on the console only warnings and errors are repeated unless debugging.
func (a *app) storeLogger() *logging.Logger {
	l := a.logger.With("storage")
	if a.console && a.level == logging.LevelInfo {
		l.SetLevel(logging.LevelWarn)
	}
	return l
}

func (a *app) fileOptions(extra ...storage.Option) []storage.Option {
	opts := append(a.cfg.FileOptions(), storage.WithLogger(a.storeLogger()))
	return append(opts, extra...)
}

func (a *app) disk() *storage.Disk {
	return storage.NewDisk(a.cfg.Store.Indent)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gnmd version",
		Args:  cobra.NoArgs,
		Annotations: map[string]string{
			skipConfig: "true",
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gnmd %s\n", version)
		},
	}
}
