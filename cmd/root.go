package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/killallgit/r2get/pkg/config"
	"github.com/killallgit/r2get/pkg/logging"
)

// NewRootCmd builds the command tree. Every call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "r2get",
		Short: "Fetch a show from R2",
		Long: `r2get - download a Raadio 2 broadcast and package it as tagged audio files

The show is looked up by name in the ERR program catalog, its audio streams
are downloaded with resumable retries, and every stream is written out as
m4a (unmodified), mp3 and/or ogg with title, artist and cover art set.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default config/settings.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "enable JSON formatted logs")
	rootCmd.PersistentFlags().CountP("verbose", "v", "increase verbosity, repeatable")

	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// loadConfig initializes configuration from the --config flag
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if err := config.Init(path); err != nil {
		return nil, err
	}
	return config.GetConfig()
}

// newLogger builds the run logger. Flags win over the logging config section.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if cmd.Flags().Changed("log-level") || level == "" {
		level, _ = cmd.Flags().GetString("log-level")
	}
	verbosity, _ := cmd.Flags().GetCount("verbose")

	format := cfg.Logging.Format
	if jsonLogs, _ := cmd.Flags().GetBool("json-logs"); jsonLogs {
		format = "json"
	}

	return logging.New(logging.Options{
		Level:  logging.LevelForVerbosity(level, verbosity),
		Format: format,
		Writer: cmd.ErrOrStderr(),
	})
}
