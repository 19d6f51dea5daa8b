package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var forceRestart bool

// scrapeCmd scrapes one or more projects without the transform stage.
var scrapeCmd = &cobra.Command{
	Use:   "scrape [project-key...]",
	Short: "Fetch raw issue data for one or more projects",
	Long: `Fetch all issues for the given project keys (or the configured projects
when none are given), writing raw page batches and progress checkpoints.

A run that finds an existing checkpoint resumes from it. Use --force-restart
to delete the checkpoint first and fetch the project from the beginning.`,
	Example: `  # Scrape the configured projects
  jiraminer scrape

  # Scrape one project
  jiraminer scrape KAFKA

  # Ignore the existing checkpoint and start over
  jiraminer scrape KAFKA --force-restart`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := resolveProjects(args)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return scrapeProjects(ctx, projects, forceRestart)
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().BoolVar(&forceRestart, "force-restart", false, "delete the checkpoint and start from the beginning")
}
