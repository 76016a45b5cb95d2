// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/fairvalue/internal/batch"
	"github.com/wonny/fairvalue/internal/profile"
	"github.com/wonny/fairvalue/internal/store"
	"github.com/wonny/fairvalue/pkg/config"
	"github.com/wonny/fairvalue/pkg/logger"
)

// WatchlistRefreshJob re-scores the watchlist on a schedule. With a store
// configured it reads the stored watchlist and persists the run; without one
// it loads the configured watchlist source and only warms the caches.
type WatchlistRefreshJob struct {
	scorer  *batch.Scorer
	loader  *batch.WatchlistLoader
	store   *store.Store // nil when persistence is disabled
	config  *config.Config
	profile profile.Profile
	logger  *logger.Logger
}

// NewWatchlistRefreshJob creates the refresh job.
func NewWatchlistRefreshJob(
	scorer *batch.Scorer,
	loader *batch.WatchlistLoader,
	st *store.Store,
	cfg *config.Config,
	prof profile.Profile,
	log *logger.Logger,
) *WatchlistRefreshJob {
	return &WatchlistRefreshJob{
		scorer:  scorer,
		loader:  loader,
		store:   st,
		config:  cfg,
		profile: prof,
		logger:  log.WithField("job", "watchlist_refresh"),
	}
}

// Name returns the job name.
func (j *WatchlistRefreshJob) Name() string {
	return "watchlist_refresh"
}

// Schedule returns the configured cron expression.
func (j *WatchlistRefreshJob) Schedule() string {
	return j.config.Batch.RefreshCron
}

// Run re-scores the watchlist.
func (j *WatchlistRefreshJob) Run(ctx context.Context) error {
	entries, err := j.loadEntries(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		j.logger.Warn("Watchlist is empty, nothing to refresh")
		return nil
	}

	mode, err := j.profile.ParsedMode()
	if err != nil {
		return fmt.Errorf("refresh profile: %w", err)
	}

	report, err := j.scorer.Score(ctx, batch.Symbols(entries), batch.Options{
		Weights: j.profile.WeightSet(),
		Mode:    mode,
	})
	if err != nil {
		return fmt.Errorf("score watchlist: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"succeeded": report.Succeeded,
		"skipped":   report.Skipped,
		"failed":    report.Failed,
	}).Info("Watchlist refreshed")

	if j.store != nil {
		if _, err := j.store.SaveRun(ctx, "scheduled", string(mode), report); err != nil {
			return fmt.Errorf("save refresh run: %w", err)
		}
	}

	return nil
}

// loadEntries prefers the stored watchlist, falling back to the configured
// source when the store is empty or disabled.
func (j *WatchlistRefreshJob) loadEntries(ctx context.Context) ([]batch.WatchlistEntry, error) {
	if j.store != nil {
		entries, err := j.store.Watchlist(ctx)
		if err != nil {
			return nil, fmt.Errorf("load stored watchlist: %w", err)
		}
		if len(entries) > 0 {
			return entries, nil
		}
	}

	if j.config.Batch.WatchlistURL == "" {
		return nil, nil
	}

	entries, err := j.loader.Load(ctx, j.config.Batch.WatchlistURL)
	if err != nil {
		return nil, fmt.Errorf("load watchlist source: %w", err)
	}
	return entries, nil
}
