// Package stockanalysis scrapes company statistics from stockanalysis.com as
// a fallback when the primary quote provider withholds fundamentals. It fills
// numeric gaps only; identity fields and price history stay with the primary.
package stockanalysis

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/provider"
	"github.com/wonny/fairvalue/pkg/config"
	"github.com/wonny/fairvalue/pkg/httputil"
	"github.com/wonny/fairvalue/pkg/logger"
)

// Client scrapes the per-symbol statistics page.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new stockanalysis.com scraping client.
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "stockanalysis"),
		baseURL:    cfg.StockAnalysis.BaseURL,
	}
}

// Fundamentals scrapes the statistics tables for one symbol. Fields the page
// does not expose stay unavailable.
func (c *Client) Fundamentals(ctx context.Context, symbol string) (*contracts.Fundamentals, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", provider.ErrUnavailable)
	}

	pageURL := fmt.Sprintf("%s/stocks/%s/statistics/", c.baseURL, url.PathEscape(strings.ToLower(symbol)))

	resp, err := c.httpClient.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status code %d", provider.ErrUnavailable, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse statistics page: %w", err)
	}

	fundamentals := scrapeStatistics(symbol, doc)

	c.logger.WithFields(map[string]interface{}{
		"symbol":  symbol,
		"has_eps": fundamentals.EPS.Valid,
	}).Debug("Scraped fundamentals fallback")

	return fundamentals, nil
}

// statLabels maps page row labels to setters on the record. Labels are
// matched case-insensitively after trimming.
var statLabels = map[string]func(*contracts.Fundamentals, contracts.Amount){
	"market cap":         func(f *contracts.Fundamentals, a contracts.Amount) { f.MarketCap = a },
	"enterprise value":   func(f *contracts.Fundamentals, a contracts.Amount) { f.EnterpriseValue = a },
	"eps (ttm)":          func(f *contracts.Fundamentals, a contracts.Amount) { f.EPS = a },
	"pe ratio":           func(f *contracts.Fundamentals, a contracts.Amount) { f.PERatio = a },
	"ebitda":             func(f *contracts.Fundamentals, a contracts.Amount) { f.EBITDA = a },
	"shares outstanding": func(f *contracts.Fundamentals, a contracts.Amount) { f.SharesOutstanding = a },
	"book value / share": func(f *contracts.Fundamentals, a contracts.Amount) { f.BookValuePerShare = a },
	"current stock price": func(f *contracts.Fundamentals, a contracts.Amount) {
		f.CurrentPrice = a
	},
}

// scrapeStatistics walks every two-cell table row and keeps the labels we
// know. The page groups stats into several small tables, so the selector
// stays broad on purpose.
func scrapeStatistics(symbol string, doc *goquery.Document) *contracts.Fundamentals {
	fundamentals := &contracts.Fundamentals{
		Symbol:   symbol,
		Currency: "USD",
	}

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() != 2 {
			return
		}

		label := strings.ToLower(strings.TrimSpace(cells.Eq(0).Text()))
		set, ok := statLabels[label]
		if !ok {
			return
		}

		if value, ok := parseStatValue(cells.Eq(1).Text()); ok {
			set(fundamentals, value)
		}
	})

	return fundamentals
}

// parseStatValue parses a display value like "2.95T", "6.42" or "n/a".
// Unparseable values report !ok so the field stays unavailable.
func parseStatValue(raw string) (contracts.Amount, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "n/a" || s == "-" {
		return contracts.Amount{}, false
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "T"):
		multiplier = 1e12
		s = strings.TrimSuffix(s, "T")
	case strings.HasSuffix(s, "B"):
		multiplier = 1e9
		s = strings.TrimSuffix(s, "B")
	case strings.HasSuffix(s, "M"):
		multiplier = 1e6
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		multiplier = 1e3
		s = strings.TrimSuffix(s, "K")
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return contracts.Amount{}, false
	}

	return contracts.AmountOf(value * multiplier), true
}
