package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jiraminer/pkg/checkpoint"
	"jiraminer/pkg/config"
	errs "jiraminer/pkg/errors"
	"jiraminer/pkg/jira"
	"jiraminer/pkg/logger"
	"jiraminer/pkg/metrics"
	"jiraminer/pkg/retry"
	"jiraminer/pkg/storage"
)

// Scraper fetches all issues of a project page by page, persisting each page
// as a batch file and checkpointing after every page.
type Scraper struct {
	client      SearchClient
	checkpoints *checkpoint.Manager
	store       *storage.Manager
	cfg         *config.Config
	logger      logger.Logger
}

// New creates a Scraper wired to the real Jira client and the configured
// storage layout.
func New(cfg *config.Config, log logger.Logger) (*Scraper, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	checkpoints, err := checkpoint.NewManager(cfg.Storage.CheckpointDir, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkpoint manager: %w", err)
	}

	store, err := storage.NewManager(cfg.Storage.RawDir, cfg.Storage.ProcessedDir, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage manager: %w", err)
	}

	return NewWithClient(cfg, jira.NewClient(cfg, log), checkpoints, store, log), nil
}

// NewWithClient creates a Scraper with explicit dependencies. Used by tests
// to substitute a scripted client.
func NewWithClient(cfg *config.Config, client SearchClient, checkpoints *checkpoint.Manager, store *storage.Manager, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Scraper{
		client:      client,
		checkpoints: checkpoints,
		store:       store,
		cfg:         cfg,
		logger:      log,
	}
}

// Checkpoints exposes the checkpoint manager, for the CLI's checkpoint
// subcommands.
func (s *Scraper) Checkpoints() *checkpoint.Manager {
	return s.checkpoints
}

// ScrapeProject fetches every unfetched issue of a project and returns the
// cumulative fetched count, including issues counted by a resumed
// checkpoint.
//
// The returned error is nil on completion, wraps context.Canceled when the
// run was interrupted (the count returned is still meaningful), and is a
// categorized fatal error otherwise. In every case the last saved checkpoint
// stays consistent with a persisted batch, so a re-run resumes cleanly.
func (s *Scraper) ScrapeProject(ctx context.Context, projectKey string) (int, error) {
	log := s.logger.WithField("project", projectKey)
	log.Info("starting scrape")

	startOffset := s.checkpoints.LastOffset(projectKey)
	currentOffset := startOffset
	totalFetched := startOffset
	batchNumber := startOffset / s.client.PageSize()

	if startOffset > 0 {
		log.WithField("start_offset", startOffset).Info("resuming from checkpoint")
	}

	// One request up front to learn the collection size. The total is
	// re-observed from every subsequent page response, since the collection
	// can grow while scraping.
	first, err := s.fetchPage(ctx, projectKey, currentOffset)
	if err != nil {
		return totalFetched, s.fatal(projectKey, err)
	}
	totalKnown := first.Total

	log.WithFields(map[string]interface{}{
		"total_known": totalKnown,
		"start_at":    startOffset,
		"remaining":   totalKnown - startOffset,
	}).Info("total issue count observed")

	for currentOffset < totalKnown {
		page, err := s.fetchPage(ctx, projectKey, currentOffset)
		if err != nil {
			return totalFetched, s.fatal(projectKey, err)
		}
		totalKnown = page.Total

		// Guard against an infinite loop when the remote total is stale.
		if len(page.Issues) == 0 {
			log.WithField("offset", currentOffset).Warn("server returned empty page, stopping")
			break
		}

		if err := s.store.SaveBatch(projectKey, batchNumber, page.Issues); err != nil {
			// An unpersisted batch must not be checkpointed past.
			return totalFetched, s.fatal(projectKey, err)
		}

		fetched := len(page.Issues)
		currentOffset += fetched
		totalFetched += fetched
		batchNumber++

		metrics.PagesFetched.WithLabelValues(projectKey).Inc()
		metrics.IssuesFetched.WithLabelValues(projectKey).Add(float64(fetched))

		cp := &checkpoint.Checkpoint{
			ProjectKey:   projectKey,
			LastOffset:   currentOffset,
			TotalFetched: totalFetched,
			TotalKnown:   totalKnown,
		}
		if err := s.checkpoints.Save(cp); err != nil {
			// Only durability is lost; in-memory progress continues and the
			// next run re-fetches from the last durable offset.
			log.WithError(err).Warn("failed to save checkpoint")
		}

		progress := 0.0
		if totalKnown > 0 {
			progress = float64(totalFetched) / float64(totalKnown) * 100
		}
		log.WithFields(map[string]interface{}{
			"fetched":     totalFetched,
			"total_known": totalKnown,
			"progress":    fmt.Sprintf("%.1f%%", progress),
		}).Info("page persisted")

		if currentOffset < totalKnown {
			if err := retry.Wait(ctx, s.cfg.Scraper.PolitenessDelay); err != nil {
				log.Info("scrape interrupted, progress saved")
				return totalFetched, fmt.Errorf("scrape interrupted: %w", err)
			}
		}
	}

	log.WithField("total_fetched", totalFetched).Info("scrape complete")
	return totalFetched, nil
}

// fetchPage issues one page request under the retry policy. A rate-limited
// response is answered with a fixed cooldown and a fresh attempt at the same
// offset, without touching the retry budget.
func (s *Scraper) fetchPage(ctx context.Context, projectKey string, startAt int) (*jira.SearchResult, error) {
	for {
		result, err := retry.DoWithResult(func() (*jira.SearchResult, error) {
			return s.client.SearchIssues(ctx, projectKey, startAt)
		}, s.retryPolicy(ctx))
		if err == nil {
			return result, nil
		}

		if errs.IsType(err, errs.ErrorTypeRateLimit) {
			metrics.RateLimitHits.Inc()
			s.logger.WarnWithFields("rate limited, cooling down", map[string]interface{}{
				"project":     projectKey,
				"start_at":    startAt,
				"cooldown_ms": s.cfg.Scraper.RateLimitCooldown.Milliseconds(),
			})
			if werr := retry.Wait(ctx, s.cfg.Scraper.RateLimitCooldown); werr != nil {
				return nil, fmt.Errorf("cooldown interrupted: %w", werr)
			}
			continue
		}

		return nil, err
	}
}

func (s *Scraper) retryPolicy(ctx context.Context) *retry.Config {
	return &retry.Config{
		MaxAttempts: s.cfg.Retry.MaxAttempts,
		Backoff: &retry.ExponentialBackoff{
			MinWait:      s.cfg.Retry.MinWait,
			MaxWait:      s.cfg.Retry.MaxWait,
			Multiplier:   s.cfg.Retry.Multiplier,
			JitterFactor: s.cfg.Retry.JitterFactor,
		},
		RetryIf: retry.TransientOnly,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			metrics.RequestRetries.Inc()
		},
		Context: ctx,
		Logger:  s.logger,
	}
}

// fatal records a run-ending error. Interrupts pass through untouched; they
// are a graceful stop, not a failure.
func (s *Scraper) fatal(projectKey string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.logger.WithField("project", projectKey).Info("scrape interrupted, progress saved")
		return err
	}

	metrics.FetchErrors.WithLabelValues(string(errs.TypeOf(err))).Inc()
	s.logger.WithError(err).WithField("project", projectKey).Error("scrape failed")
	return fmt.Errorf("scrape %s: %w", projectKey, err)
}
