package contracts

import (
	"fmt"
	"time"
)

// Band is the categorical valuation verdict.
type Band string

const (
	BandOverValued   Band = "Over Valued"
	BandDeepDiscount Band = "Deep Discount"
	BandHighValue    Band = "High Value"
	BandUndervalued  Band = "Undervalued"
	BandFairPremium  Band = "Fair/Premium"
	BandUnknown      Band = ""
)

// Signal is the buy/hold verdict derived from fair value vs. price.
type Signal string

const (
	SignalBuy      Signal = "Buy"
	SignalHoldSell Signal = "Hold/Sell"
	SignalUnknown  Signal = ""
)

// CapTier is the market-capitalization bucket.
type CapTier string

const (
	CapMega    CapTier = "Mega"
	CapLarge   CapTier = "Large"
	CapMid     CapTier = "Mid"
	CapSmall   CapTier = "Small"
	CapUnknown CapTier = "Unknown"
)

// Cap tier thresholds in the quote currency.
const (
	megaCapFloor  = 200_000_000_000
	largeCapFloor = 10_000_000_000
	midCapFloor   = 2_000_000_000
)

// CapTierFor buckets a market capitalization. Unavailable input maps to
// CapUnknown rather than Small.
func CapTierFor(marketCap Amount) CapTier {
	if !marketCap.Valid {
		return CapUnknown
	}

	switch {
	case marketCap.Float64 >= megaCapFloor:
		return CapMega
	case marketCap.Float64 >= largeCapFloor:
		return CapLarge
	case marketCap.Float64 >= midCapFloor:
		return CapMid
	default:
		return CapSmall
	}
}

// Estimates holds the four independent fair-value estimates.
// Each is optional; an unavailable estimate means its formula's inputs were
// missing or invalid, never that the estimate is zero.
type Estimates struct {
	EV     Amount `json:"ev"`
	DCF    Amount `json:"dcf"`
	Graham Amount `json:"graham"`
	PE     Amount `json:"pe"`
}

// WeightSet holds the percentage weights for combining estimates.
type WeightSet struct {
	EV     int `json:"ev"`
	DCF    int `json:"dcf"`
	Graham int `json:"graham"`
	PE     int `json:"pe"`
}

// DefaultWeights is the watchlist default: EV 40, DCF 30, Graham 10, PE 20.
func DefaultWeights() WeightSet {
	return WeightSet{EV: 40, DCF: 30, Graham: 10, PE: 20}
}

// Total returns the sum of all weights.
func (w WeightSet) Total() int {
	return w.EV + w.DCF + w.Graham + w.PE
}

// Validate checks the weights are usable: non-negative, not all zero.
func (w WeightSet) Validate() error {
	if w.EV < 0 || w.DCF < 0 || w.Graham < 0 || w.PE < 0 {
		return &ConfigurationError{Reason: "weights must be non-negative"}
	}
	if w.Total() == 0 {
		return &ConfigurationError{Reason: "at least one weight must be positive"}
	}
	return nil
}

// CompositeResult is the engine's combined output for one ticker.
type CompositeResult struct {
	Estimates         Estimates `json:"estimates"`
	Combined          Amount    `json:"combined"`            // weighted fair value
	ExpectedReturnPct Amount    `json:"expected_return_pct"` // vs. current price
	CurrentPrice      float64   `json:"current_price"`
	Band              Band      `json:"band"`
	Signal            Signal    `json:"signal"`
}

// Snapshot is the full valuation record for one ticker: the composite result
// plus descriptive fields and historical price bands. It is a plain record so
// any rendering layer can consume it without re-deriving numbers.
type Snapshot struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Industry string  `json:"industry"`
	Country  string  `json:"country"`
	Currency string  `json:"currency"`
	CapTier  CapTier `json:"cap_tier"`

	CompositeResult

	UndervaluedPct Amount `json:"undervalued_pct"` // EV fair price vs. current price

	High3Y     Amount `json:"high_3y"`
	Low3Y      Amount `json:"low_3y"`
	EntryPrice Amount `json:"entry_price"` // 3y low plus 5%
	ExitPrice  Amount `json:"exit_price"`  // 3y high minus 5%

	FetchedAt time.Time `json:"fetched_at"`
}

// ConfigurationError reports caller configuration that cannot be acted on,
// such as weights that do not sum to 100 in strict mode. It is surfaced
// explicitly rather than silently defaulted.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}
