package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/provider"
)

// chartResponse mirrors the v8 chart payload. Each indicator array is aligned
// with the timestamp array; individual entries may be null on holidays or
// partial sessions, so every slot is a pointer.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open  []*float64 `json:"open"`
					High  []*float64 `json:"high"`
					Low   []*float64 `json:"low"`
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// PriceHistory fetches daily bars for the lookback window. An unknown symbol
// or an upstream refusal surfaces as ErrUnavailable; a thinly traded symbol
// with gaps simply yields fewer bars.
func (c *Client) PriceHistory(ctx context.Context, symbol string, lookbackYears int) (contracts.PriceSeries, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", provider.ErrUnavailable)
	}
	if lookbackYears <= 0 {
		lookbackYears = 3
	}

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?range=%dy&interval=1d",
		c.chartBaseURL, url.PathEscape(symbol), lookbackYears)

	body, err := c.fetchJSON(ctx, fullURL)
	if err != nil {
		return nil, err
	}

	series, err := parseChart(body)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"bars":   len(series),
	}).Debug("Fetched price history")

	return series, nil
}

// parseChart flattens the columnar chart payload into bars. Slots where any
// OHLC value is null are skipped entirely; a half-formed bar would poison the
// high/low scan downstream.
func parseChart(body []byte) (contracts.PriceSeries, error) {
	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse chart: %w", err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s", provider.ErrUnavailable, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: empty chart result", provider.ErrUnavailable)
	}

	r := resp.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return contracts.PriceSeries{}, nil
	}

	quote := r.Indicators.Quote[0]
	series := make(contracts.PriceSeries, 0, len(r.Timestamp))

	for i, ts := range r.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			break
		}
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil || quote.Close[i] == nil {
			continue
		}

		series = append(series, contracts.PriceBar{
			Date:  time.Unix(ts, 0).UTC(),
			Open:  *quote.Open[i],
			High:  *quote.High[i],
			Low:   *quote.Low[i],
			Close: *quote.Close[i],
		})
	}

	return series, nil
}
