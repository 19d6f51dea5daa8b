package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jiraminer/pkg/checkpoint"
	"jiraminer/pkg/jira"
	"jiraminer/pkg/logger"
)

// checkpointCmd groups checkpoint inspection and maintenance.
var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Inspect or delete scrape progress checkpoints",
}

var checkpointShowCmd = &cobra.Command{
	Use:   "show <project-key>",
	Short: "Show the saved checkpoint for a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := jira.SanitizeProjectKey(args[0])

		mgr, err := checkpoint.NewManager(cfg.Storage.CheckpointDir, logger.GetLogger())
		if err != nil {
			return err
		}

		cp, err := mgr.Load(key)
		if err != nil {
			return err
		}
		if cp == nil {
			fmt.Printf("no checkpoint for %s\n", key)
			return nil
		}

		fmt.Printf("project:       %s\n", cp.ProjectKey)
		fmt.Printf("last offset:   %d\n", cp.LastOffset)
		fmt.Printf("total fetched: %d\n", cp.TotalFetched)
		fmt.Printf("total known:   %d\n", cp.TotalKnown)
		fmt.Printf("updated at:    %s\n", cp.UpdatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

var checkpointDeleteCmd = &cobra.Command{
	Use:   "delete <project-key>",
	Short: "Delete the checkpoint for a project, forcing a fresh scrape",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := jira.SanitizeProjectKey(args[0])

		mgr, err := checkpoint.NewManager(cfg.Storage.CheckpointDir, logger.GetLogger())
		if err != nil {
			return err
		}

		return mgr.Delete(key)
	},
}

func init() {
	rootCmd.AddCommand(checkpointCmd)
	checkpointCmd.AddCommand(checkpointShowCmd)
	checkpointCmd.AddCommand(checkpointDeleteCmd)
}
