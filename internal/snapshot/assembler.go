// Package snapshot assembles the full valuation record for one ticker:
// fundamentals, the four estimates, the composite, the band verdict and the
// historical entry/exit prices.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/provider"
	"github.com/wonny/fairvalue/internal/valuation"
	"github.com/wonny/fairvalue/pkg/logger"
)

// Entry/exit margins on the lookback extremes.
const (
	entryMarginOverLow   = 1.05
	exitMarginUnderHigh  = 0.95
	defaultLookbackYears = 3
)

// Assembler builds snapshots from a data provider. It owns the order of
// operations; the valuation math itself lives in the valuation package.
type Assembler struct {
	provider      provider.DataProvider
	logger        *logger.Logger
	lookbackYears int
}

// New creates a snapshot assembler.
func New(p provider.DataProvider, lookbackYears int, log *logger.Logger) *Assembler {
	if lookbackYears <= 0 {
		lookbackYears = defaultLookbackYears
	}
	return &Assembler{
		provider:      p,
		logger:        log.WithField("module", "snapshot"),
		lookbackYears: lookbackYears,
	}
}

// Assemble produces the full snapshot for one symbol.
//
// The only hard requirements are reachable fundamentals and a positive
// current price; every other missing input degrades its own field to
// unavailable. Strict-mode composite failures (weights not 100, estimates
// incomplete) are returned to the caller, who chose that mode.
func (a *Assembler) Assemble(ctx context.Context, symbol string, weights contracts.WeightSet, mode valuation.Mode) (*contracts.Snapshot, error) {
	fundamentals, err := a.provider.Fundamentals(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch fundamentals for %s: %w", symbol, err)
	}

	if !fundamentals.CurrentPrice.Valid || fundamentals.CurrentPrice.Float64 <= 0 {
		return nil, fmt.Errorf("fundamentals for %s: %w", symbol, valuation.ErrInvalidCurrentPrice)
	}
	currentPrice := fundamentals.CurrentPrice.Float64

	estimates := valuation.Estimate(fundamentals)

	combined, err := valuation.Combine(estimates, weights, mode)
	if err != nil {
		return nil, fmt.Errorf("composite for %s: %w", symbol, err)
	}

	snap := &contracts.Snapshot{
		Symbol:   fundamentals.Symbol,
		Name:     fundamentals.Name,
		Industry: fundamentals.Industry,
		Country:  fundamentals.Country,
		Currency: fundamentals.Currency,
		CapTier:  contracts.CapTierFor(fundamentals.MarketCap),

		CompositeResult: contracts.CompositeResult{
			Estimates:         estimates,
			Combined:          combined,
			ExpectedReturnPct: valuation.ExpectedReturnPct(combined, currentPrice),
			CurrentPrice:      currentPrice,
		},

		FetchedAt: time.Now().UTC(),
	}

	// The band verdict keys off the EV estimate alone; the composite is a
	// separate figure and does not influence the band.
	if estimates.EV.Positive() {
		classification, err := valuation.Classify(estimates.EV.Float64, currentPrice)
		if err != nil {
			return nil, fmt.Errorf("classify %s: %w", symbol, err)
		}
		snap.Band = classification.Band
		snap.Signal = classification.Signal
		snap.UndervaluedPct = contracts.AmountOf(classification.UndervaluedPct)
	}

	a.applyPriceBands(ctx, snap)

	return snap, nil
}

// applyPriceBands fills the lookback high/low and the derived entry/exit
// prices. History failures degrade the bands, never the snapshot.
func (a *Assembler) applyPriceBands(ctx context.Context, snap *contracts.Snapshot) {
	series, err := a.provider.PriceHistory(ctx, snap.Symbol, a.lookbackYears)
	if err != nil {
		a.logger.WithFields(map[string]interface{}{
			"symbol": snap.Symbol,
			"error":  err.Error(),
		}).Warn("Price history unavailable, skipping entry/exit bands")
		return
	}

	snap.High3Y = series.MaxHigh()
	snap.Low3Y = series.MinLow()

	if snap.Low3Y.Valid {
		snap.EntryPrice = contracts.AmountOf(valuation.Round2(snap.Low3Y.Float64 * entryMarginOverLow))
	}
	if snap.High3Y.Valid {
		snap.ExitPrice = contracts.AmountOf(valuation.Round2(snap.High3Y.Float64 * exitMarginUnderHigh))
	}
}
