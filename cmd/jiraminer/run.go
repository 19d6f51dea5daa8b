package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jiraminer/pkg/jira"
	"jiraminer/pkg/logger"
	"jiraminer/pkg/retry"
	"jiraminer/pkg/scraper"
	"jiraminer/pkg/transform"
)

var (
	scrapeOnly    bool
	transformOnly bool
)

// runCmd executes the full pipeline over the configured projects.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scrape and transform pipeline over all configured projects",
	Long: `Run the full pipeline: scrape every configured project, then transform
the accumulated raw batches into training data.

Each project is processed sequentially; one project's failure does not stop
the others. An interrupt (Ctrl-C) stops cleanly with progress saved and is
not treated as a failure.`,
	Example: `  # Full pipeline over the configured projects
  jiraminer run

  # Only fetch raw data
  jiraminer run --scrape-only

  # Only transform previously fetched data
  jiraminer run --transform-only`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if scrapeOnly && transformOnly {
			return errors.New("cannot use both --scrape-only and --transform-only")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if !transformOnly {
			if err := scrapeProjects(ctx, cfg.Projects, false); err != nil {
				return err
			}
		}
		if ctx.Err() != nil {
			// Interrupted between stages; partial progress is saved.
			return nil
		}
		if !scrapeOnly {
			if err := transformProjects(cfg.Projects); err != nil {
				return err
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&scrapeOnly, "scrape-only", false, "only run the scraping stage")
	runCmd.Flags().BoolVar(&transformOnly, "transform-only", false, "only run the transformation stage")
}

// scrapeProjects scrapes each project in turn. A project's fatal error is
// recorded and the next project is still attempted; an interrupt stops the
// loop and is reported as success.
func scrapeProjects(ctx context.Context, projects []string, forceRestart bool) error {
	log := logger.GetLogger()

	s, err := scraper.New(cfg, log)
	if err != nil {
		return err
	}

	var failed []string
	for i, project := range projects {
		if forceRestart {
			if err := s.Checkpoints().Delete(project); err != nil {
				log.WithError(err).WithField("project", project).Warn("failed to delete checkpoint")
			}
		}

		total, err := s.ScrapeProject(ctx, project)
		switch {
		case err == nil:
			log.WithFields(map[string]interface{}{
				"project": project,
				"total":   total,
			}).Info("project scraped")
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			log.WithFields(map[string]interface{}{
				"project": project,
				"fetched": total,
			}).Info("scraping interrupted, run again to resume")
			return nil
		default:
			log.WithError(err).WithField("project", project).Error("project scrape failed")
			failed = append(failed, project)
		}

		// Pause between projects, but not after the last one.
		if i < len(projects)-1 {
			if err := retry.Wait(ctx, cfg.Scraper.ProjectPause); err != nil {
				return nil
			}
		}
	}

	logSummary("scraping", projects, failed)
	if len(failed) > 0 {
		return fmt.Errorf("scraping failed for %d of %d projects", len(failed), len(projects))
	}
	return nil
}

// transformProjects transforms each project's raw batches in turn.
func transformProjects(projects []string) error {
	log := logger.GetLogger()

	t, err := transform.New(cfg, log)
	if err != nil {
		return err
	}

	var failed []string
	for _, project := range projects {
		total, err := t.TransformProject(project)
		if err != nil {
			log.WithError(err).WithField("project", project).Error("project transform failed")
			failed = append(failed, project)
			continue
		}
		log.WithFields(map[string]interface{}{
			"project":  project,
			"examples": total,
		}).Info("project transformed")
	}

	logSummary("transformation", projects, failed)
	if len(failed) > 0 {
		return fmt.Errorf("transformation failed for %d of %d projects", len(failed), len(projects))
	}
	return nil
}

func logSummary(stage string, projects, failed []string) {
	logger.GetLogger().InfoWithFields(stage+" summary", map[string]interface{}{
		"total":      len(projects),
		"successful": len(projects) - len(failed),
		"failed":     failed,
	})
}

// resolveProjects normalizes command arguments into project keys, falling
// back to the configured project list when no arguments were given.
func resolveProjects(args []string) ([]string, error) {
	if len(args) == 0 {
		if len(cfg.Projects) == 0 {
			return nil, errors.New("no projects configured and none given on the command line")
		}
		return cfg.Projects, nil
	}

	keys := make([]string, 0, len(args))
	for _, arg := range args {
		key := jira.SanitizeProjectKey(arg)
		if !jira.IsValidProjectKey(key) {
			return nil, fmt.Errorf("invalid project key: %q", arg)
		}
		keys = append(keys, key)
	}
	return keys, nil
}
