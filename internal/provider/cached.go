package provider

import (
	"context"
	"strings"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/pkg/logger"
	"github.com/wonny/fairvalue/pkg/redis"
)

// CachedProvider decorates a DataProvider with a Redis-backed cache.
// Only the plain records cross the cache boundary; a cache hit never hands
// out anything tied to an upstream session. With Redis disabled every call
// passes straight through.
type CachedProvider struct {
	inner  DataProvider
	cache  *redis.Cache
	logger *logger.Logger
}

// NewCached wraps a provider with caching.
func NewCached(inner DataProvider, cache *redis.Cache, log *logger.Logger) *CachedProvider {
	return &CachedProvider{
		inner:  inner,
		cache:  cache,
		logger: log.WithField("module", "provider_cache"),
	}
}

// Fundamentals returns cached fundamentals or fetches and stores them.
func (p *CachedProvider) Fundamentals(ctx context.Context, symbol string) (*contracts.Fundamentals, error) {
	key := redis.FundamentalsKey(strings.ToUpper(symbol))

	var cached contracts.Fundamentals
	if hit, err := p.cache.Get(ctx, key, &cached); err == nil && hit {
		p.logger.WithField("symbol", symbol).Debug("Fundamentals cache hit")
		return &cached, nil
	}

	fresh, err := p.inner.Fundamentals(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, key, fresh, redis.TTLQuote); err != nil {
		p.logger.WithError(err).Warn("Failed to cache fundamentals")
	}

	return fresh, nil
}

// PriceHistory returns cached bars or fetches and stores them.
func (p *CachedProvider) PriceHistory(ctx context.Context, symbol string, lookbackYears int) (contracts.PriceSeries, error) {
	key := redis.HistoryKey(strings.ToUpper(symbol), lookbackYears)

	var cached contracts.PriceSeries
	if hit, err := p.cache.Get(ctx, key, &cached); err == nil && hit {
		p.logger.WithField("symbol", symbol).Debug("History cache hit")
		return cached, nil
	}

	fresh, err := p.inner.PriceHistory(ctx, symbol, lookbackYears)
	if err != nil {
		return nil, err
	}

	// Empty history is cached too: an unlisted symbol stays empty all day
	if err := p.cache.Set(ctx, key, fresh, redis.TTLHistory); err != nil {
		p.logger.WithError(err).Warn("Failed to cache price history")
	}

	return fresh, nil
}

// Search returns cached matches or fetches and stores them.
func (p *CachedProvider) Search(ctx context.Context, query string) ([]contracts.SymbolMatch, error) {
	key := redis.SearchKey(strings.ToLower(strings.TrimSpace(query)))

	var cached []contracts.SymbolMatch
	if hit, err := p.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	fresh, err := p.inner.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	if len(fresh) > 0 {
		if err := p.cache.Set(ctx, key, fresh, redis.TTLSearch); err != nil {
			p.logger.WithError(err).Warn("Failed to cache search results")
		}
	}

	return fresh, nil
}
