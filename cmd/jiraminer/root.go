package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"jiraminer/pkg/config"
	"jiraminer/pkg/logger"
)

var (
	// Version information, set at build time
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	dataDir    string

	// Effective configuration, loaded before any command runs
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "jiraminer",
	Short: "Scrape Jira issues into LLM training data",
	Long: `jiraminer retrieves issues from a Jira REST API project by project and
converts them into flat training examples.

The pipeline has two stages:
  - scrape:    fetch issues page by page, checkpointing progress so an
               interrupted run resumes where it left off
  - transform: convert the raw batch files into JSONL training examples

Progress checkpoints, raw batches and processed output live under the data
directory (default: ./data).`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if dataDir != "" {
			cfg.Storage.DataDir = dataDir
			cfg.Storage.RawDir = ""
			cfg.Storage.ProcessedDir = ""
			cfg.Storage.CheckpointDir = ""
			cfg.ResolveDirs()
		}

		if err := logger.Initialize(&cfg.Logging); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		return nil
	},
}

// Execute runs the root command. Argument conflicts and unrecoverable
// pipeline errors exit 1; a user interrupt is reported as success by the
// commands themselves.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .jiraminer.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "base directory for checkpoints, raw batches and output")

	rootCmd.SetVersionTemplate(`jiraminer {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
