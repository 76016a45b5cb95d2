package valuation

import (
	"errors"

	"github.com/wonny/fairvalue/internal/contracts"
)

// Classifier errors. Both are invalid-input conditions, kept distinct so
// logs and tests can tell which price was bad.
var (
	ErrInvalidCurrentPrice = errors.New("valuation: current price must be positive")
	ErrInvalidFairPrice    = errors.New("valuation: fair price must be positive")
)

// Band thresholds on the undervalued percentage, evaluated in order.
const (
	overValuedBelowPct  = 5.0
	deepDiscountOverPct = 30.0
	highValueOverPct    = 20.0
	undervaluedOverPct  = 18.0
)

// Classification is the categorical verdict for one fair price vs. one
// current price.
type Classification struct {
	Band           contracts.Band
	Signal         contracts.Signal
	UndervaluedPct float64 // rounded to 2dp
}

// Classify derives the valuation band and buy/hold signal. Both prices are
// required and must be positive; the current price guards the division.
//
// The thresholds are exclusive on the upper rules: at exactly 30% the >30
// rule does not match and the verdict is High Value (the >20 rule fires).
func Classify(fairPrice, currentPrice float64) (Classification, error) {
	if currentPrice <= 0 {
		return Classification{}, ErrInvalidCurrentPrice
	}
	if fairPrice <= 0 {
		return Classification{}, ErrInvalidFairPrice
	}

	undervaluedPct := (fairPrice - currentPrice) / currentPrice * 100

	var band contracts.Band
	switch {
	case undervaluedPct < overValuedBelowPct:
		band = contracts.BandOverValued
	case undervaluedPct > deepDiscountOverPct:
		band = contracts.BandDeepDiscount
	case undervaluedPct > highValueOverPct:
		band = contracts.BandHighValue
	case undervaluedPct > undervaluedOverPct:
		band = contracts.BandUndervalued
	default:
		band = contracts.BandFairPremium
	}

	signal := contracts.SignalHoldSell
	if fairPrice > currentPrice {
		signal = contracts.SignalBuy
	}

	return Classification{
		Band:           band,
		Signal:         signal,
		UndervaluedPct: Round2(undervaluedPct),
	}, nil
}
