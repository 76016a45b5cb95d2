package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fairvalue/internal/batch"
	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/format"
	"github.com/wonny/fairvalue/internal/valuation"
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Score a whole watchlist",
	Long: `Score every ticker in a watchlist concurrently and print a ranked
table. The watchlist is a CSV with a Symbol column, read from a local file
or an http(s) URL; without --watchlist the configured BATCH_WATCHLIST_URL
is used.

Example:
  go run ./cmd/fairvalue batch --watchlist watchlist.csv
  go run ./cmd/fairvalue batch --watchlist watchlist.csv --sort expected_return_pct --top 10
  go run ./cmd/fairvalue batch --watchlist watchlist.csv --filter apple`,
	RunE: runBatch,
}

var (
	batchWatchlist string
	batchMode      string
	batchSort      string
	batchFilter    string
	batchTop       int
)

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchWatchlist, "watchlist", "", "watchlist CSV path or URL")
	batchCmd.Flags().StringVar(&batchMode, "mode", "", "composite mode (strict|tolerant), overrides the profile")
	batchCmd.Flags().StringVar(&batchSort, "sort", string(batch.SortByUndervaluedPct), "sort column (undervalued_pct|expected_return_pct|combined|current_price)")
	batchCmd.Flags().StringVar(&batchFilter, "filter", "", "keep only tickers whose symbol or name contains this text")
	batchCmd.Flags().IntVar(&batchTop, "top", 0, "print only the top N rows (0 = all)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	s, cleanup, err := buildStack()
	if err != nil {
		return err
	}
	defer cleanup()

	closeDB, err := s.withStore()
	if err != nil {
		return err
	}
	defer closeDB()

	if s.store != nil {
		if err := s.store.EnsureSchema(cmd.Context()); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	sortCol, err := batch.ParseSortColumn(batchSort)
	if err != nil {
		return err
	}

	prof, err := resolveProfile()
	if err != nil {
		return err
	}
	mode, err := prof.ParsedMode()
	if err != nil {
		return err
	}
	if batchMode != "" {
		if mode, err = valuation.ParseMode(batchMode); err != nil {
			return err
		}
	}

	// Load the watchlist
	source := batchWatchlist
	if source == "" {
		source = s.cfg.Batch.WatchlistURL
	}
	entries, err := s.loader.Load(cmd.Context(), source)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("watchlist %s has no symbols", source)
	}

	fmt.Printf("Scoring %d tickers with %d workers...\n", len(entries), s.cfg.Batch.Workers)

	// Score
	report, err := s.scorer.Score(cmd.Context(), batch.Symbols(entries), batch.Options{
		Weights: prof.WeightSet(),
		Mode:    mode,
	})
	if err != nil {
		return err
	}

	// Persist when a database is configured
	if s.store != nil {
		runID, err := s.store.SaveRun(cmd.Context(), profileName, string(mode), report)
		if err != nil {
			s.log.WithError(err).Warn("Failed to persist batch run")
		} else {
			fmt.Printf("Saved as run %d\n", runID)
		}
	}

	// Rank and print
	ranked := batch.FilterByName(report.Snapshots, batchFilter)
	batch.SortBy(ranked, sortCol)
	if batchTop > 0 && batchTop < len(ranked) {
		ranked = ranked[:batchTop]
	}

	printBatchTable(ranked)
	printBatchSummary(report)

	return nil
}

func printBatchTable(snaps []*contracts.Snapshot) {
	if len(snaps) == 0 {
		fmt.Println("No tickers to display")
		return
	}

	fmt.Printf("\n%-8s %-24s %-6s %12s %12s %10s %-14s %s\n",
		"SYMBOL", "NAME", "CAP", "PRICE", "FAIR", "UNDER%", "BAND", "SIGNAL")
	fmt.Println(strings.Repeat("-", 100))

	for _, snap := range snaps {
		name := snap.Name
		if len(name) > 24 {
			name = name[:21] + "..."
		}
		band := string(snap.Band)
		if band == "" {
			band = "-"
		}
		signal := string(snap.Signal)
		if signal == "" {
			signal = "-"
		}

		fmt.Printf("%-8s %-24s %-6s %12s %12s %10s %-14s %s\n",
			snap.Symbol,
			name,
			snap.CapTier,
			format.Currency(contracts.AmountOf(snap.CurrentPrice), snap.Currency),
			format.Currency(snap.Combined, snap.Currency),
			format.Percent(snap.UndervaluedPct),
			band,
			signal,
		)
	}
}

func printBatchSummary(report *batch.Report) {
	fmt.Printf("\n%d scored, %d skipped, %d failed in %s\n",
		report.Succeeded, report.Skipped, report.Failed, report.Elapsed.Round(10*time.Millisecond))

	for _, outcome := range report.Outcomes {
		if outcome.Status == batch.StatusOK {
			continue
		}
		fmt.Printf("  %-8s %s: %s\n", outcome.Symbol, outcome.Status, outcome.Reason)
	}
}
