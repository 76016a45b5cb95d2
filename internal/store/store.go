// Package store persists watchlists and batch run history. It is optional:
// the engine runs fully in-memory, and the store is wired only when a
// database URL is configured.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/fairvalue/internal/batch"
	"github.com/wonny/fairvalue/pkg/logger"
)

// Store handles persistence of watchlists and batch runs.
type Store struct {
	db     *pgxpool.Pool
	logger *logger.Logger
}

// New creates a store on an existing pool.
func New(db *pgxpool.Pool, log *logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithField("module", "store"),
	}
}

// EnsureSchema creates the tables if they do not exist. Safe to run on every
// startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS watchlist (
			symbol      TEXT PRIMARY KEY,
			name        TEXT NOT NULL DEFAULT '',
			added_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS batch_runs (
			id          BIGSERIAL PRIMARY KEY,
			profile     TEXT NOT NULL,
			mode        TEXT NOT NULL,
			succeeded   INT NOT NULL,
			skipped     INT NOT NULL,
			failed      INT NOT NULL,
			started_at  TIMESTAMPTZ NOT NULL,
			elapsed_ms  BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS batch_outcomes (
			run_id      BIGINT NOT NULL REFERENCES batch_runs(id) ON DELETE CASCADE,
			symbol      TEXT NOT NULL,
			status      TEXT NOT NULL,
			reason      TEXT NOT NULL DEFAULT '',
			snapshot    JSONB,
			PRIMARY KEY (run_id, symbol)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_batch_outcomes_symbol ON batch_outcomes(symbol)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	s.logger.Debug("Schema ensured")
	return nil
}

// ReplaceWatchlist swaps the stored watchlist for the given entries in one
// transaction.
func (s *Store) ReplaceWatchlist(ctx context.Context, entries []batch.WatchlistEntry) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin watchlist replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM watchlist`); err != nil {
		return fmt.Errorf("clear watchlist: %w", err)
	}

	for _, entry := range entries {
		_, err := tx.Exec(ctx,
			`INSERT INTO watchlist (symbol, name) VALUES ($1, $2)`,
			entry.Symbol, entry.Name,
		)
		if err != nil {
			return fmt.Errorf("insert watchlist entry %s: %w", entry.Symbol, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit watchlist replace: %w", err)
	}

	s.logger.WithField("count", len(entries)).Info("Watchlist replaced")
	return nil
}

// Watchlist returns the stored watchlist ordered by symbol.
func (s *Store) Watchlist(ctx context.Context) ([]batch.WatchlistEntry, error) {
	rows, err := s.db.Query(ctx, `SELECT symbol, name FROM watchlist ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("query watchlist: %w", err)
	}
	defer rows.Close()

	var entries []batch.WatchlistEntry
	for rows.Next() {
		var entry batch.WatchlistEntry
		if err := rows.Scan(&entry.Symbol, &entry.Name); err != nil {
			return nil, fmt.Errorf("scan watchlist entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// SaveRun persists one batch report with all of its outcomes and returns the
// run id.
func (s *Store) SaveRun(ctx context.Context, profileName, mode string, report *batch.Report) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin run save: %w", err)
	}
	defer tx.Rollback(ctx)

	var runID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO batch_runs (profile, mode, succeeded, skipped, failed, started_at, elapsed_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		profileName, mode,
		report.Succeeded, report.Skipped, report.Failed,
		report.StartedAt, report.Elapsed.Milliseconds(),
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("insert batch run: %w", err)
	}

	for _, outcome := range report.Outcomes {
		var snapshotJSON []byte
		if outcome.Snapshot != nil {
			snapshotJSON, err = json.Marshal(outcome.Snapshot)
			if err != nil {
				return 0, fmt.Errorf("marshal snapshot %s: %w", outcome.Symbol, err)
			}
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO batch_outcomes (run_id, symbol, status, reason, snapshot)
			VALUES ($1, $2, $3, $4, $5)`,
			runID, outcome.Symbol, string(outcome.Status), outcome.Reason, snapshotJSON,
		)
		if err != nil {
			return 0, fmt.Errorf("insert outcome %s: %w", outcome.Symbol, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit run save: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"run_id":    runID,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	}).Info("Batch run saved")

	return runID, nil
}

// RunSummary is one row of batch run history.
type RunSummary struct {
	ID        int64         `json:"id"`
	Profile   string        `json:"profile"`
	Mode      string        `json:"mode"`
	Succeeded int           `json:"succeeded"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
}

// RecentRuns returns the newest runs, most recent first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, profile, mode, succeeded, skipped, failed, started_at, elapsed_ms
		FROM batch_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query batch runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var elapsedMS int64
		if err := rows.Scan(&run.ID, &run.Profile, &run.Mode, &run.Succeeded, &run.Skipped, &run.Failed, &run.StartedAt, &elapsedMS); err != nil {
			return nil, fmt.Errorf("scan batch run: %w", err)
		}
		run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// RunOutcomes returns the outcomes of one run. pgx.ErrNoRows surfaces as an
// empty slice; an unknown run and an outcome-less run look the same here.
func (s *Store) RunOutcomes(ctx context.Context, runID int64) ([]batch.Outcome, error) {
	rows, err := s.db.Query(ctx, `
		SELECT symbol, status, reason, snapshot
		FROM batch_outcomes
		WHERE run_id = $1
		ORDER BY symbol`, runID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []batch.Outcome
	for rows.Next() {
		var outcome batch.Outcome
		var status string
		var snapshotJSON []byte
		if err := rows.Scan(&outcome.Symbol, &status, &outcome.Reason, &snapshotJSON); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		outcome.Status = batch.Status(status)

		if len(snapshotJSON) > 0 {
			if err := json.Unmarshal(snapshotJSON, &outcome.Snapshot); err != nil {
				return nil, fmt.Errorf("unmarshal snapshot %s: %w", outcome.Symbol, err)
			}
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes, rows.Err()
}
