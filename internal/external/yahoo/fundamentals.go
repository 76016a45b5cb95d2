package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/provider"
)

// quoteSummary modules needed for one valuation run.
const quoteSummaryModules = "price,summaryProfile,summaryDetail,defaultKeyStatistics,financialData"

// rawValue is Yahoo's wrapped numeric: {"raw": 6.42, "fmt": "6.42"}.
// A missing or empty object means the field is unavailable.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

// amount converts a rawValue to the engine's optional decimal.
func (v rawValue) amount() contracts.Amount {
	if v.Raw == nil {
		return contracts.Amount{}
	}
	return contracts.AmountOf(*v.Raw)
}

// quoteSummaryResponse mirrors the slice of the quoteSummary payload we use.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				ShortName          string   `json:"shortName"`
				LongName           string   `json:"longName"`
				Currency           string   `json:"currency"`
				RegularMarketPrice rawValue `json:"regularMarketPrice"`
				MarketCap          rawValue `json:"marketCap"`
			} `json:"price"`
			SummaryProfile struct {
				Industry string `json:"industry"`
				Country  string `json:"country"`
			} `json:"summaryProfile"`
			SummaryDetail struct {
				TrailingPE rawValue `json:"trailingPE"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				TrailingEps       rawValue `json:"trailingEps"`
				BookValue         rawValue `json:"bookValue"`
				EnterpriseValue   rawValue `json:"enterpriseValue"`
				SharesOutstanding rawValue `json:"sharesOutstanding"`
			} `json:"defaultKeyStatistics"`
			FinancialData struct {
				Ebitda       rawValue `json:"ebitda"`
				CurrentPrice rawValue `json:"currentPrice"`
			} `json:"financialData"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// Fundamentals fetches the per-company valuation inputs for one symbol.
func (c *Client) Fundamentals(ctx context.Context, symbol string) (*contracts.Fundamentals, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", provider.ErrUnavailable)
	}

	fullURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.quoteBaseURL, url.PathEscape(symbol), quoteSummaryModules)

	body, err := c.fetchJSON(ctx, fullURL)
	if err != nil {
		return nil, err
	}

	fundamentals, err := parseQuoteSummary(symbol, body)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":    symbol,
		"has_price": fundamentals.CurrentPrice.Valid,
		"has_eps":   fundamentals.EPS.Valid,
	}).Debug("Fetched fundamentals")

	return fundamentals, nil
}

// parseQuoteSummary maps the Yahoo payload onto the engine record. Missing
// numeric fields stay unavailable; they are never defaulted to zero here.
func parseQuoteSummary(symbol string, body []byte) (*contracts.Fundamentals, error) {
	var resp quoteSummaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse quoteSummary: %w", err)
	}

	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("%w: %s", provider.ErrUnavailable, resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: empty quoteSummary result", provider.ErrUnavailable)
	}

	r := resp.QuoteSummary.Result[0]

	name := r.Price.ShortName
	if name == "" {
		name = r.Price.LongName
	}

	currency := r.Price.Currency
	if currency == "" {
		currency = "USD"
	}

	// financialData.currentPrice is fresher; price.regularMarketPrice is the
	// fallback when the financialData module is withheld.
	currentPrice := r.FinancialData.CurrentPrice.amount()
	if !currentPrice.Valid {
		currentPrice = r.Price.RegularMarketPrice.amount()
	}

	return &contracts.Fundamentals{
		Symbol:   symbol,
		Name:     name,
		Industry: r.SummaryProfile.Industry,
		Country:  r.SummaryProfile.Country,
		Currency: currency,

		EPS:               r.DefaultKeyStatistics.TrailingEps.amount(),
		BookValuePerShare: r.DefaultKeyStatistics.BookValue.amount(),
		PERatio:           r.SummaryDetail.TrailingPE.amount(),
		EnterpriseValue:   r.DefaultKeyStatistics.EnterpriseValue.amount(),
		EBITDA:            r.FinancialData.Ebitda.amount(),
		SharesOutstanding: r.DefaultKeyStatistics.SharesOutstanding.amount(),
		MarketCap:         r.Price.MarketCap.amount(),
		CurrentPrice:      currentPrice,
	}, nil
}
