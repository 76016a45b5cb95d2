package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/fairvalue/internal/scheduler"
	"github.com/wonny/fairvalue/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the scheduled watchlist refresh",
	Long: `Start the job scheduler. The watchlist refresh job re-scores the
watchlist on the BATCH_REFRESH_CRON schedule (default: weekday mornings)
and, when DATABASE_URL is set, persists each run.

Example:
  go run ./cmd/fairvalue scheduler
  go run ./cmd/fairvalue scheduler --now`,
	RunE: runScheduler,
}

var schedulerRunNow bool

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().BoolVar(&schedulerRunNow, "now", false, "run the refresh job immediately on startup")
}

func runScheduler(cmd *cobra.Command, args []string) error {
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

	prof, err := resolveProfile()
	if err != nil {
		return err
	}

	sched := scheduler.New(s.log)
	refreshJob := jobs.NewWatchlistRefreshJob(s.scorer, s.loader, s.store, s.cfg, prof, s.log)
	if err := sched.AddJob(refreshJob); err != nil {
		return err
	}

	sched.Start()
	defer sched.Stop()

	if schedulerRunNow {
		if err := sched.RunNow(refreshJob.Name()); err != nil {
			return err
		}
	}

	fmt.Printf("Scheduler running (refresh: %s)\nPress Ctrl+C to stop\n", s.cfg.Batch.RefreshCron)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}
