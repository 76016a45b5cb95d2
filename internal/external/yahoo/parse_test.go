package yahoo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fairvalue/internal/provider"
)

const quoteSummaryFixture = `{
  "quoteSummary": {
    "result": [
      {
        "price": {
          "shortName": "Apple Inc.",
          "currency": "USD",
          "regularMarketPrice": {"raw": 189.5, "fmt": "189.50"},
          "marketCap": {"raw": 2950000000000, "fmt": "2.95T"}
        },
        "summaryProfile": {
          "industry": "Consumer Electronics",
          "country": "United States"
        },
        "summaryDetail": {
          "trailingPE": {"raw": 29.5, "fmt": "29.50"}
        },
        "defaultKeyStatistics": {
          "trailingEps": {"raw": 6.42, "fmt": "6.42"},
          "bookValue": {"raw": 4.25, "fmt": "4.25"},
          "enterpriseValue": {"raw": 3000000000000, "fmt": "3T"},
          "sharesOutstanding": {"raw": 15500000000, "fmt": "15.5B"}
        },
        "financialData": {
          "ebitda": {"raw": 130000000000, "fmt": "130B"},
          "currentPrice": {"raw": 190.1, "fmt": "190.10"}
        }
      }
    ],
    "error": null
  }
}`

func TestParseQuoteSummary(t *testing.T) {
	f, err := parseQuoteSummary("AAPL", []byte(quoteSummaryFixture))
	require.NoError(t, err)

	assert.Equal(t, "AAPL", f.Symbol)
	assert.Equal(t, "Apple Inc.", f.Name)
	assert.Equal(t, "Consumer Electronics", f.Industry)
	assert.Equal(t, "United States", f.Country)
	assert.Equal(t, "USD", f.Currency)

	require.True(t, f.EPS.Valid)
	assert.Equal(t, 6.42, f.EPS.Float64)
	require.True(t, f.CurrentPrice.Valid)
	assert.Equal(t, 190.1, f.CurrentPrice.Float64, "financialData price preferred over regularMarketPrice")
	require.True(t, f.MarketCap.Valid)
	assert.Equal(t, 2.95e12, f.MarketCap.Float64)
	assert.True(t, f.PERatio.Valid)
	assert.True(t, f.BookValuePerShare.Valid)
	assert.True(t, f.EnterpriseValue.Valid)
	assert.True(t, f.EBITDA.Valid)
	assert.True(t, f.SharesOutstanding.Valid)
}

func TestParseQuoteSummary_PartialModules(t *testing.T) {
	// Loss-making company: no trailingPE, no EPS, empty wrapped objects.
	body := `{
	  "quoteSummary": {
	    "result": [
	      {
	        "price": {
	          "longName": "Example Corp",
	          "regularMarketPrice": {"raw": 12.0}
	        },
	        "summaryProfile": {"country": "India"},
	        "summaryDetail": {"trailingPE": {}},
	        "defaultKeyStatistics": {"trailingEps": {}},
	        "financialData": {}
	      }
	    ],
	    "error": null
	  }
	}`

	f, err := parseQuoteSummary("EXMP", []byte(body))
	require.NoError(t, err)

	assert.Equal(t, "Example Corp", f.Name, "long name used when short name absent")
	assert.Equal(t, "USD", f.Currency, "currency defaults when provider is silent")
	assert.Equal(t, "India", f.Country)

	assert.False(t, f.EPS.Valid)
	assert.False(t, f.PERatio.Valid)
	assert.False(t, f.EBITDA.Valid)
	require.True(t, f.CurrentPrice.Valid, "falls back to regular market price")
	assert.Equal(t, 12.0, f.CurrentPrice.Float64)
}

func TestParseQuoteSummary_UpstreamError(t *testing.T) {
	body := `{
	  "quoteSummary": {
	    "result": null,
	    "error": {"code": "Not Found", "description": "Quote not found for ticker symbol: NOPE"}
	  }
	}`

	_, err := parseQuoteSummary("NOPE", []byte(body))
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrUnavailable)
}

func TestParseQuoteSummary_EmptyResult(t *testing.T) {
	_, err := parseQuoteSummary("X", []byte(`{"quoteSummary":{"result":[],"error":null}}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrUnavailable)
}

const chartFixture = `{
  "chart": {
    "result": [
      {
        "timestamp": [1700000000, 1700086400, 1700172800],
        "indicators": {
          "quote": [
            {
              "open":  [100.0, 102.0, null],
              "high":  [105.0, 110.0, 108.0],
              "low":   [ 98.0,  95.0,  99.0],
              "close": [102.0, 101.0, 104.0]
            }
          ]
        }
      }
    ],
    "error": null
  }
}`

func TestParseChart(t *testing.T) {
	series, err := parseChart([]byte(chartFixture))
	require.NoError(t, err)

	// Third slot has a null open and must be dropped whole.
	require.Len(t, series, 2)
	assert.Equal(t, 100.0, series[0].Open)
	assert.Equal(t, 110.0, series[1].High)
	assert.Equal(t, 95.0, series[1].Low)

	high := series.MaxHigh()
	require.True(t, high.Valid)
	assert.Equal(t, 110.0, high.Float64)

	low := series.MinLow()
	require.True(t, low.Valid)
	assert.Equal(t, 95.0, low.Float64)
}

func TestParseChart_UpstreamError(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

	_, err := parseChart([]byte(body))
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrUnavailable)
}

func TestParseChart_NoQuotes(t *testing.T) {
	body := `{"chart":{"result":[{"timestamp":[],"indicators":{"quote":[]}}],"error":null}}`

	series, err := parseChart([]byte(body))
	require.NoError(t, err)
	assert.Empty(t, series)
}

const searchFixture = `{
  "quotes": [
    {"symbol": "AAPL", "shortname": "Apple Inc.", "exchDisp": "NASDAQ"},
    {"symbol": "APLE", "longname": "Apple Hospitality REIT, Inc.", "exchDisp": "NYSE"},
    {"symbol": "", "shortname": "Some Index"},
    {"symbol": "NONM", "exchDisp": "NYSE"}
  ],
  "news": []
}`

func TestParseSearch(t *testing.T) {
	matches, err := parseSearch([]byte(searchFixture))
	require.NoError(t, err)

	// Entries without a symbol or without any name are dropped.
	require.Len(t, matches, 2)
	assert.Equal(t, "AAPL", matches[0].Symbol)
	assert.Equal(t, "Apple Inc.", matches[0].DisplayName)
	assert.Equal(t, "NASDAQ", matches[0].Exchange)
	assert.Equal(t, "Apple Hospitality REIT, Inc.", matches[1].DisplayName, "long name used when short name absent")
}

func TestParseSearch_Empty(t *testing.T) {
	matches, err := parseSearch([]byte(`{"quotes":[],"news":[]}`))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
