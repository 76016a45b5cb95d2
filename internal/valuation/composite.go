package valuation

import (
	"errors"
	"fmt"

	"github.com/wonny/fairvalue/internal/contracts"
)

// Mode selects the composite policy. The two policies are deliberate
// alternatives and are never mixed: the caller chooses one explicitly.
type Mode string

const (
	// ModeStrict requires weights summing to exactly 100 and all four
	// estimates present; anything less is reported, not approximated.
	ModeStrict Mode = "strict"

	// ModeTolerant renormalizes over the weights of the estimates that are
	// present, so one missing estimate does not block the composite.
	ModeTolerant Mode = "tolerant"
)

// ErrIncompleteEstimates reports a strict-mode composite blocked by one or
// more unavailable estimates.
var ErrIncompleteEstimates = errors.New("valuation: not all estimates are available")

// ParseMode converts a user-supplied string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeStrict:
		return ModeStrict, nil
	case ModeTolerant:
		return ModeTolerant, nil
	default:
		return "", fmt.Errorf("unknown composite mode %q (want strict or tolerant)", s)
	}
}

// Combine produces the weighted fair value from the four estimates.
//
// Strict mode: a ConfigurationError when the weights do not sum to 100,
// ErrIncompleteEstimates when any estimate is unavailable. Tolerant mode:
// the combined value is the weighted average over present estimates only,
// unavailable (without error) when none are present or all their weights
// are zero.
func Combine(est contracts.Estimates, weights contracts.WeightSet, mode Mode) (contracts.Amount, error) {
	if err := weights.Validate(); err != nil {
		return contracts.Amount{}, err
	}

	if mode == ModeStrict {
		if total := weights.Total(); total != 100 {
			return contracts.Amount{}, &contracts.ConfigurationError{
				Reason: fmt.Sprintf("weights must sum to 100, got %d", total),
			}
		}
		if !est.EV.Valid || !est.DCF.Valid || !est.Graham.Valid || !est.PE.Valid {
			return contracts.Amount{}, ErrIncompleteEstimates
		}
	}

	weighted := 0.0
	presentWeight := 0
	for _, part := range []struct {
		estimate contracts.Amount
		weight   int
	}{
		{est.EV, weights.EV},
		{est.DCF, weights.DCF},
		{est.Graham, weights.Graham},
		{est.PE, weights.PE},
	} {
		if !part.estimate.Valid {
			continue
		}
		weighted += part.estimate.Float64 * float64(part.weight)
		presentWeight += part.weight
	}

	if presentWeight == 0 {
		return contracts.Amount{}, nil
	}

	return contracts.AmountOf(Round2(weighted / float64(presentWeight))), nil
}

// ExpectedReturnPct computes the percentage gap between the combined fair
// value and the current price. Unavailable when either side is missing or
// the current price is non-positive.
func ExpectedReturnPct(combined contracts.Amount, currentPrice float64) contracts.Amount {
	if !combined.Valid || currentPrice <= 0 {
		return contracts.Amount{}
	}

	return contracts.AmountOf(Round2((combined.Float64 - currentPrice) / currentPrice * 100))
}
