// Package batch scores whole watchlists concurrently and reports a
// per-ticker outcome for every symbol submitted.
package batch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/snapshot"
	"github.com/wonny/fairvalue/internal/valuation"
	"github.com/wonny/fairvalue/pkg/config"
	"github.com/wonny/fairvalue/pkg/logger"
)

// Status is the per-ticker batch outcome.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome records what happened to one submitted symbol. Every symbol gets
// exactly one outcome; a failure never removes a ticker from the report.
type Outcome struct {
	Symbol   string              `json:"symbol"`
	Status   Status              `json:"status"`
	Reason   string              `json:"reason,omitempty"`
	Snapshot *contracts.Snapshot `json:"snapshot,omitempty"`
}

// Report is the result of one batch run.
type Report struct {
	Snapshots []*contracts.Snapshot `json:"snapshots"`
	Outcomes  []Outcome             `json:"outcomes"`

	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`

	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Progress is an optional per-ticker notification, delivered from worker
// goroutines as outcomes land.
type Progress struct {
	Done   int    `json:"done"`
	Total  int    `json:"total"`
	Symbol string `json:"symbol"`
	Status Status `json:"status"`
}

// Scorer fans a symbol list out over a worker pool and assembles one
// snapshot per symbol.
type Scorer struct {
	assembler *snapshot.Assembler
	logger    *logger.Logger

	workers        int
	tickerTimeout  time.Duration
	allowedMarkets []string
}

// NewScorer creates a batch scorer.
func NewScorer(assembler *snapshot.Assembler, cfg config.BatchConfig, log *logger.Logger) *Scorer {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Scorer{
		assembler:      assembler,
		logger:         log.WithField("module", "batch"),
		workers:        workers,
		tickerTimeout:  cfg.TickerTimeout,
		allowedMarkets: cfg.AllowedMarkets,
	}
}

// Options tunes one batch run.
type Options struct {
	Weights contracts.WeightSet
	Mode    valuation.Mode

	// OnProgress, when set, is called once per finished ticker. It may be
	// called from multiple goroutines' results being drained; calls are
	// serialized by the collector loop.
	OnProgress func(Progress)
}

// Score runs the whole symbol list through the worker pool. The returned
// report always covers every submitted symbol; Score itself fails only on
// unusable options.
func (s *Scorer) Score(ctx context.Context, symbols []string, opts Options) (*Report, error) {
	if opts.Mode == "" {
		opts.Mode = valuation.ModeTolerant
	}
	if err := opts.Weights.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()

	s.logger.WithFields(map[string]interface{}{
		"symbols": len(symbols),
		"workers": s.workers,
		"mode":    string(opts.Mode),
	}).Info("Starting batch scoring")

	symbolCh := make(chan string, len(symbols))
	outcomeCh := make(chan Outcome, len(symbols))

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID, symbolCh, outcomeCh, opts)
		}(i)
	}

	for _, symbol := range symbols {
		symbolCh <- symbol
	}
	close(symbolCh)

	go func() {
		wg.Wait()
		close(outcomeCh)
	}()

	report := &Report{StartedAt: started}
	for outcome := range outcomeCh {
		report.Outcomes = append(report.Outcomes, outcome)
		switch outcome.Status {
		case StatusOK:
			report.Succeeded++
			report.Snapshots = append(report.Snapshots, outcome.Snapshot)
		case StatusSkipped:
			report.Skipped++
		case StatusFailed:
			report.Failed++
		}

		if opts.OnProgress != nil {
			opts.OnProgress(Progress{
				Done:   len(report.Outcomes),
				Total:  len(symbols),
				Symbol: outcome.Symbol,
				Status: outcome.Status,
			})
		}
	}

	report.Elapsed = time.Since(started)

	s.logger.WithFields(map[string]interface{}{
		"succeeded": report.Succeeded,
		"skipped":   report.Skipped,
		"failed":    report.Failed,
		"elapsed":   report.Elapsed.String(),
	}).Info("Batch scoring completed")

	return report, nil
}

// worker scores symbols until the channel drains. Each ticker gets its own
// deadline so one hung fetch cannot stall the run.
func (s *Scorer) worker(ctx context.Context, workerID int, symbolCh <-chan string, outcomeCh chan<- Outcome, opts Options) {
	for symbol := range symbolCh {
		select {
		case <-ctx.Done():
			outcomeCh <- Outcome{Symbol: symbol, Status: StatusFailed, Reason: ctx.Err().Error()}
			continue
		default:
		}

		outcomeCh <- s.scoreOne(ctx, workerID, symbol, opts)
	}
}

func (s *Scorer) scoreOne(ctx context.Context, workerID int, symbol string, opts Options) Outcome {
	tickerCtx := ctx
	if s.tickerTimeout > 0 {
		var cancel context.CancelFunc
		tickerCtx, cancel = context.WithTimeout(ctx, s.tickerTimeout)
		defer cancel()
	}

	snap, err := s.assembler.Assemble(tickerCtx, symbol, opts.Weights, opts.Mode)
	if err != nil {
		// Strict-mode configuration errors abort the whole run semantically,
		// but each worker can only report its own ticker; the caller sees the
		// shared reason on every outcome.
		var confErr *contracts.ConfigurationError
		if errors.As(err, &confErr) {
			return Outcome{Symbol: symbol, Status: StatusFailed, Reason: confErr.Error()}
		}

		s.logger.WithError(err).WithFields(map[string]interface{}{
			"worker": workerID,
			"symbol": symbol,
		}).Warn("Failed to score ticker")
		return Outcome{Symbol: symbol, Status: StatusFailed, Reason: err.Error()}
	}

	if !s.marketAllowed(snap.Country) {
		return Outcome{
			Symbol: symbol,
			Status: StatusSkipped,
			Reason: "market not in allow-list: " + snap.Country,
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"worker": workerID,
		"symbol": symbol,
		"band":   string(snap.Band),
	}).Debug("Scored ticker")

	return Outcome{Symbol: symbol, Status: StatusOK, Snapshot: snap}
}

// marketAllowed checks the country allow-list. An empty list disables the
// filter; an unknown country is kept, not dropped.
func (s *Scorer) marketAllowed(country string) bool {
	if len(s.allowedMarkets) == 0 || country == "" {
		return true
	}

	for _, allowed := range s.allowedMarkets {
		if strings.EqualFold(allowed, country) {
			return true
		}
	}
	return false
}
