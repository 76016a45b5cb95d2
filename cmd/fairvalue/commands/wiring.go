package commands

import (
	"fmt"

	"github.com/wonny/fairvalue/internal/batch"
	"github.com/wonny/fairvalue/internal/external/stockanalysis"
	"github.com/wonny/fairvalue/internal/external/yahoo"
	"github.com/wonny/fairvalue/internal/profile"
	"github.com/wonny/fairvalue/internal/provider"
	"github.com/wonny/fairvalue/internal/snapshot"
	"github.com/wonny/fairvalue/internal/store"
	"github.com/wonny/fairvalue/pkg/config"
	"github.com/wonny/fairvalue/pkg/database"
	"github.com/wonny/fairvalue/pkg/httputil"
	"github.com/wonny/fairvalue/pkg/logger"
	"github.com/wonny/fairvalue/pkg/redis"
)

// stack is the wired application: every command builds one of these and
// picks the parts it needs.
type stack struct {
	cfg        *config.Config
	log        *logger.Logger
	httpClient *httputil.Client
	provider   provider.DataProvider
	assembler  *snapshot.Assembler
	scorer     *batch.Scorer
	loader     *batch.WatchlistLoader
	store      *store.Store // nil when DATABASE_URL is not set
}

// buildStack wires the application bottom-up. The returned cleanup closes
// the shared connections and must be deferred by the caller.
func buildStack() (*stack, func(), error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to Redis (optional; no-ops when disabled)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(redisClient, "fairvalue")
	limiter := redis.NewRateLimiter(redisClient, "fairvalue")

	// 4. Create HTTP client with the shared Yahoo rate limit
	httpClient := httputil.New(log).
		WithUserAgent(cfg.Yahoo.UserAgent).
		WithRateLimiter(limiter, redis.YahooRateLimit)

	// 5. Create the provider chain: Yahoo, scraped fallback, Redis cache
	var dataProvider provider.DataProvider = yahoo.NewClient(cfg, httpClient, log)
	if cfg.StockAnalysis.Enabled {
		fallback := stockanalysis.NewClient(cfg, httpClient, log)
		dataProvider = provider.NewFallback(dataProvider, fallback, log)
	}
	dataProvider = provider.NewCached(dataProvider, cache, log)

	// 6. Create the engine
	assembler := snapshot.New(dataProvider, cfg.Batch.LookbackYears, log)
	scorer := batch.NewScorer(assembler, cfg.Batch, log)
	loader := batch.NewWatchlistLoader(httpClient)

	s := &stack{
		cfg:        cfg,
		log:        log,
		httpClient: httpClient,
		provider:   dataProvider,
		assembler:  assembler,
		scorer:     scorer,
		loader:     loader,
	}

	cleanup := func() {
		if err := redisClient.Close(); err != nil {
			log.WithError(err).Warn("Failed to close redis client")
		}
	}

	return s, cleanup, nil
}

// withStore attaches batch run persistence when DATABASE_URL is set. The
// returned closer is a no-op when persistence is disabled.
func (s *stack) withStore() (func(), error) {
	if !s.cfg.Database.Enabled() {
		return func() {}, nil
	}

	db, err := database.New(s.cfg)
	if err != nil {
		return func() {}, fmt.Errorf("connect to database: %w", err)
	}

	s.store = store.New(db.Pool, s.log)
	return db.Close, nil
}

// resolveProfile picks the weighting profile from the global flags: the
// built-in default unless a profiles file is given.
func resolveProfile() (profile.Profile, error) {
	if profileFile == "" {
		return profile.Default(), nil
	}

	file, err := profile.Load(profileFile)
	if err != nil {
		return profile.Profile{}, err
	}

	return file.Get(profileName)
}
