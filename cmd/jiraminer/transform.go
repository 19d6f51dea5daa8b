package main

import (
	"github.com/spf13/cobra"
)

// transformCmd converts previously fetched raw batches into training data.
var transformCmd = &cobra.Command{
	Use:   "transform [project-key...]",
	Short: "Convert raw batches into JSONL training examples",
	Long: `Convert the raw batch files of the given project keys (or the configured
projects when none are given) into flat training examples: one JSONL file
per project plus a pretty-printed preview of the first examples.`,
	Example: `  # Transform the configured projects
  jiraminer transform

  # Transform a single project
  jiraminer transform KAFKA`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := resolveProjects(args)
		if err != nil {
			return err
		}

		return transformProjects(projects)
	},
}

func init() {
	rootCmd.AddCommand(transformCmd)
}
