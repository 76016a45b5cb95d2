package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/wonny/fairvalue/internal/contracts"
)

// searchResponse mirrors the v1 search payload. Only equity-style quotes
// carry a symbol; news and navigation entries come back without one.
type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		ExchDisp  string `json:"exchDisp"`
	} `json:"quotes"`
}

// Search looks up ticker symbols by free-text query. An empty slice means no
// matches; only transport failures return an error.
func (c *Client) Search(ctx context.Context, query string) ([]contracts.SymbolMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	fullURL := fmt.Sprintf("%s/v1/finance/search?q=%s&quotesCount=10&newsCount=0",
		c.searchBaseURL, url.QueryEscape(query))

	body, err := c.fetchJSON(ctx, fullURL)
	if err != nil {
		return nil, err
	}

	matches, err := parseSearch(body)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"query":   query,
		"matches": len(matches),
	}).Debug("Symbol search complete")

	return matches, nil
}

// parseSearch keeps only quotes that carry both a symbol and a display name.
func parseSearch(body []byte) ([]contracts.SymbolMatch, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse search: %w", err)
	}

	matches := make([]contracts.SymbolMatch, 0, len(resp.Quotes))
	for _, q := range resp.Quotes {
		name := q.ShortName
		if name == "" {
			name = q.LongName
		}
		if q.Symbol == "" || name == "" {
			continue
		}

		matches = append(matches, contracts.SymbolMatch{
			Symbol:      q.Symbol,
			DisplayName: name,
			Exchange:    q.ExchDisp,
		})
	}

	return matches, nil
}
