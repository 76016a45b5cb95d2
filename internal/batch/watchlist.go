package batch

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/pkg/httputil"
)

// WatchlistEntry is one row of a watchlist file. Only the symbol is
// required; the name travels along for display when present.
type WatchlistEntry struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name,omitempty"`
}

// WatchlistLoader reads watchlists from local files or HTTP URLs.
type WatchlistLoader struct {
	httpClient *httputil.Client
}

// NewWatchlistLoader creates a watchlist loader.
func NewWatchlistLoader(httpClient *httputil.Client) *WatchlistLoader {
	return &WatchlistLoader{httpClient: httpClient}
}

// Load reads a CSV watchlist from a local path or an http(s) URL. The header
// must contain a Symbol column; a missing column is a configuration error,
// not an empty watchlist.
func (l *WatchlistLoader) Load(ctx context.Context, source string) ([]WatchlistEntry, error) {
	if source == "" {
		return nil, &contracts.ConfigurationError{Reason: "watchlist source is empty"}
	}

	var reader io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := l.httpClient.Get(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("fetch watchlist %s: %w", source, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch watchlist %s: status code %d", source, resp.StatusCode)
		}
		reader = resp.Body
	} else {
		file, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open watchlist %s: %w", source, err)
		}
		reader = file
	}
	defer reader.Close()

	return ParseWatchlist(reader)
}

// ParseWatchlist reads watchlist entries from CSV content. Column order is
// free; header names are matched case-insensitively. Blank symbols and
// duplicate symbols are dropped, first occurrence wins.
func ParseWatchlist(r io.Reader) ([]WatchlistEntry, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &contracts.ConfigurationError{Reason: "watchlist is empty"}
	}
	if err != nil {
		return nil, fmt.Errorf("read watchlist header: %w", err)
	}

	symbolCol, nameCol := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "symbol", "ticker":
			symbolCol = i
		case "name", "company":
			nameCol = i
		}
	}
	if symbolCol < 0 {
		return nil, &contracts.ConfigurationError{Reason: "watchlist has no Symbol column"}
	}

	seen := make(map[string]bool)
	var entries []WatchlistEntry
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read watchlist row: %w", err)
		}
		if symbolCol >= len(record) {
			continue
		}

		symbol := strings.ToUpper(strings.TrimSpace(record[symbolCol]))
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true

		entry := WatchlistEntry{Symbol: symbol}
		if nameCol >= 0 && nameCol < len(record) {
			entry.Name = strings.TrimSpace(record[nameCol])
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Symbols extracts just the ticker symbols.
func Symbols(entries []WatchlistEntry) []string {
	symbols := make([]string, 0, len(entries))
	for _, e := range entries {
		symbols = append(symbols, e.Symbol)
	}
	return symbols
}
