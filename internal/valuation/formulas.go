package valuation

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/wonny/fairvalue/internal/contracts"
)

// Default parameters for the valuation heuristics.
const (
	DefaultGrowthRate   = 0.08 // DCF earnings growth
	DefaultDiscountRate = 0.10 // DCF discount rate
	DefaultPERatio      = 15.0 // fallback earnings multiple
	DefaultEVGrowthRate = 0.10 // projected EBITDA growth

	grahamMultiplier = 22.5
)

// Round2 rounds to two decimal places, half away from zero.
// Every formula output and every display value goes through this helper so
// rounding is consistent across the engine.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// DCF estimates fair value with a single-stage discounted cash flow model:
// next year's earnings divided by the excess of discount rate over growth.
//
// Unavailable when eps is missing or non-positive, or when the discount rate
// does not exceed the growth rate (the model's denominator would be zero or
// negative).
func DCF(eps contracts.Amount, growthRate, discountRate float64) contracts.Amount {
	if !eps.Positive() {
		return contracts.Amount{}
	}
	if discountRate <= growthRate {
		return contracts.Amount{}
	}

	cashFlow := eps.Float64 * (1 + growthRate)
	return contracts.AmountOf(Round2(cashFlow / (discountRate - growthRate)))
}

// Graham estimates fair value with the Graham number:
// sqrt(22.5 × eps × bvps). Unavailable unless both inputs are positive.
func Graham(eps, bvps contracts.Amount) contracts.Amount {
	if !eps.Positive() || !bvps.Positive() {
		return contracts.Amount{}
	}

	return contracts.AmountOf(Round2(math.Sqrt(grahamMultiplier * eps.Float64 * bvps.Float64)))
}

// PEMultiple estimates fair value as eps × trailing P/E. A missing P/E falls
// back to DefaultPERatio; a non-positive one makes the estimate unavailable
// (a negative multiple is not a price).
func PEMultiple(eps, peRatio contracts.Amount) contracts.Amount {
	if !eps.Positive() {
		return contracts.Amount{}
	}

	pe := peRatio.Or(DefaultPERatio)
	if pe <= 0 {
		return contracts.Amount{}
	}

	return contracts.AmountOf(Round2(eps.Float64 * pe))
}

// EVBased estimates fair value per share from the EV/EBITDA multiple: project
// EBITDA one year out at growthRate, re-apply the current multiple, divide by
// shares outstanding.
//
// Unavailable when any of enterprise value, EBITDA or shares outstanding is
// missing or non-positive. Requiring positive inputs keeps the estimate
// non-negative by construction.
func EVBased(enterpriseValue, ebitda, sharesOutstanding contracts.Amount, growthRate float64) contracts.Amount {
	if !enterpriseValue.Positive() || !ebitda.Positive() || !sharesOutstanding.Positive() {
		return contracts.Amount{}
	}

	multiple := enterpriseValue.Float64 / ebitda.Float64
	projectedEBITDA := ebitda.Float64 * (1 + growthRate)
	projectedEV := projectedEBITDA * multiple

	return contracts.AmountOf(Round2(projectedEV / sharesOutstanding.Float64))
}

// Estimate computes all four estimates from one fundamentals record using the
// default parameters.
func Estimate(f *contracts.Fundamentals) contracts.Estimates {
	return contracts.Estimates{
		EV:     EVBased(f.EnterpriseValue, f.EBITDA, f.SharesOutstanding, DefaultEVGrowthRate),
		DCF:    DCF(f.EPS, DefaultGrowthRate, DefaultDiscountRate),
		Graham: Graham(f.EPS, f.BookValuePerShare),
		PE:     PEMultiple(f.EPS, f.PERatio),
	}
}
