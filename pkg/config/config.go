package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional: batch run history is kept only when a URL is set)
	Database DatabaseConfig

	// Redis (optional: provider cache and shared rate limiting)
	Redis RedisConfig

	// Market data provider
	Yahoo YahooConfig

	// Scraped fundamentals fallback
	StockAnalysis StockAnalysisConfig

	// Batch scoring
	Batch BatchConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// YahooConfig holds Yahoo Finance endpoint configuration.
type YahooConfig struct {
	QuoteBaseURL   string // quoteSummary host
	ChartBaseURL   string // v8 chart host
	SearchBaseURL  string // v1 search host
	UserAgent      string
	RequestsPerSec float64 // local token-bucket limit
}

// StockAnalysisConfig holds the scraped-fundamentals fallback configuration.
type StockAnalysisConfig struct {
	BaseURL string
	Enabled bool
}

// BatchConfig holds watchlist scoring configuration.
type BatchConfig struct {
	Workers        int
	TickerTimeout  time.Duration
	LookbackYears  int
	AllowedMarkets []string // country allow-list; empty disables the filter
	WatchlistURL   string   // default remote watchlist CSV
	RefreshCron    string   // schedule for the refresh job
}

// Enabled reports whether batch run persistence is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8087"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Yahoo: YahooConfig{
			QuoteBaseURL:   getEnv("YAHOO_QUOTE_BASE_URL", "https://query2.finance.yahoo.com"),
			ChartBaseURL:   getEnv("YAHOO_CHART_BASE_URL", "https://query1.finance.yahoo.com"),
			SearchBaseURL:  getEnv("YAHOO_SEARCH_BASE_URL", "https://query2.finance.yahoo.com"),
			UserAgent:      getEnv("YAHOO_USER_AGENT", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"),
			RequestsPerSec: getEnvAsFloat("YAHOO_REQUESTS_PER_SEC", 5),
		},

		StockAnalysis: StockAnalysisConfig{
			BaseURL: getEnv("STOCKANALYSIS_BASE_URL", "https://stockanalysis.com"),
			Enabled: getEnvAsBool("STOCKANALYSIS_ENABLED", true),
		},

		Batch: BatchConfig{
			Workers:        getEnvAsInt("BATCH_WORKERS", 8),
			TickerTimeout:  getEnvAsDuration("BATCH_TICKER_TIMEOUT", "20s"),
			LookbackYears:  getEnvAsInt("BATCH_LOOKBACK_YEARS", 3),
			AllowedMarkets: getEnvAsList("BATCH_ALLOWED_MARKETS", []string{"United States", "India"}),
			WatchlistURL:   getEnv("BATCH_WATCHLIST_URL", ""),
			RefreshCron:    getEnv("BATCH_REFRESH_CRON", "0 30 6 * * 1-5"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are consistent.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Batch.Workers < 1 {
		return fmt.Errorf("BATCH_WORKERS must be at least 1")
	}

	if c.Batch.LookbackYears < 1 || c.Batch.LookbackYears > 10 {
		return fmt.Errorf("BATCH_LOOKBACK_YEARS must be between 1 and 10")
	}

	if c.Yahoo.RequestsPerSec <= 0 {
		return fmt.Errorf("YAHOO_REQUESTS_PER_SEC must be positive")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
