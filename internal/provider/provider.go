package provider

import (
	"context"
	"errors"

	"github.com/wonny/fairvalue/internal/contracts"
)

// ErrUnavailable reports that the upstream source could not produce data for
// a request: unknown symbol, rate limit exhausted, transport failure. It is
// a first-class outcome, not an exception; callers degrade per ticker.
var ErrUnavailable = errors.New("provider: data unavailable")

// DataProvider is the engine's only view of the outside world. All three
// methods are safe to call repeatedly; caching, TTLs and rate-limit fallback
// live behind this interface and are invisible to the engine.
//
// Implementations return only plain serializable records, never live handles
// to upstream sessions, so results can be cached and shared across
// goroutines safely.
type DataProvider interface {
	// Fundamentals returns the per-company inputs for one valuation run, or
	// ErrUnavailable.
	Fundamentals(ctx context.Context, symbol string) (*contracts.Fundamentals, error)

	// PriceHistory returns daily bars over the lookback window. An empty
	// series is a valid result, not an error.
	PriceHistory(ctx context.Context, symbol string, lookbackYears int) (contracts.PriceSeries, error)

	// Search returns symbol matches for a free-text query, best first.
	// Empty on no matches or transport failure.
	Search(ctx context.Context, query string) ([]contracts.SymbolMatch, error)
}
