package provider

import (
	"context"
	"errors"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/pkg/logger"
)

// FundamentalsSource is a secondary origin for per-company numbers. Scraped
// sources implement only this; history and search stay with the primary.
type FundamentalsSource interface {
	Fundamentals(ctx context.Context, symbol string) (*contracts.Fundamentals, error)
}

// FallbackProvider fills fundamentals gaps from a secondary source. When the
// primary succeeds with holes, the secondary patches only the missing numeric
// fields; when the primary is unavailable entirely, the secondary record is
// used as-is. History and search always pass through.
type FallbackProvider struct {
	primary   DataProvider
	secondary FundamentalsSource
	logger    *logger.Logger
}

// NewFallback wraps a provider with a secondary fundamentals source.
func NewFallback(primary DataProvider, secondary FundamentalsSource, log *logger.Logger) *FallbackProvider {
	return &FallbackProvider{
		primary:   primary,
		secondary: secondary,
		logger:    log.WithField("module", "provider_fallback"),
	}
}

// Fundamentals merges the primary and secondary records.
func (p *FallbackProvider) Fundamentals(ctx context.Context, symbol string) (*contracts.Fundamentals, error) {
	primary, err := p.primary.Fundamentals(ctx, symbol)
	if err != nil {
		if !errors.Is(err, ErrUnavailable) {
			return nil, err
		}

		p.logger.WithField("symbol", symbol).Warn("Primary fundamentals unavailable, trying fallback")
		secondary, ferr := p.secondary.Fundamentals(ctx, symbol)
		if ferr != nil {
			return nil, err // the primary failure is the one worth reporting
		}
		return secondary, nil
	}

	if complete(primary) {
		return primary, nil
	}

	secondary, ferr := p.secondary.Fundamentals(ctx, symbol)
	if ferr != nil {
		p.logger.WithField("symbol", symbol).WithError(ferr).Debug("Fallback source unavailable, keeping partial record")
		return primary, nil
	}

	patched := patchMissing(primary, secondary)
	if patched > 0 {
		p.logger.WithFields(map[string]interface{}{
			"symbol":  symbol,
			"patched": patched,
		}).Info("Patched missing fundamentals from fallback")
	}

	return primary, nil
}

// PriceHistory passes through to the primary.
func (p *FallbackProvider) PriceHistory(ctx context.Context, symbol string, lookbackYears int) (contracts.PriceSeries, error) {
	return p.primary.PriceHistory(ctx, symbol, lookbackYears)
}

// Search passes through to the primary.
func (p *FallbackProvider) Search(ctx context.Context, query string) ([]contracts.SymbolMatch, error) {
	return p.primary.Search(ctx, query)
}

// complete reports whether every valuation input is present.
func complete(f *contracts.Fundamentals) bool {
	return f.EPS.Valid &&
		f.BookValuePerShare.Valid &&
		f.PERatio.Valid &&
		f.EnterpriseValue.Valid &&
		f.EBITDA.Valid &&
		f.SharesOutstanding.Valid &&
		f.MarketCap.Valid &&
		f.CurrentPrice.Valid
}

// patchMissing copies secondary values into unavailable primary fields and
// returns how many fields changed.
func patchMissing(dst, src *contracts.Fundamentals) int {
	patched := 0

	fill := func(d *contracts.Amount, s contracts.Amount) {
		if !d.Valid && s.Valid {
			*d = s
			patched++
		}
	}

	fill(&dst.EPS, src.EPS)
	fill(&dst.BookValuePerShare, src.BookValuePerShare)
	fill(&dst.PERatio, src.PERatio)
	fill(&dst.EnterpriseValue, src.EnterpriseValue)
	fill(&dst.EBITDA, src.EBITDA)
	fill(&dst.SharesOutstanding, src.SharesOutstanding)
	fill(&dst.MarketCap, src.MarketCap)
	fill(&dst.CurrentPrice, src.CurrentPrice)

	return patched
}
