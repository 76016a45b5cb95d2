package contracts

import "time"

// Fundamentals is the per-company input record for one valuation run.
// Every numeric field is independently optional; the provider fills what it
// can and leaves the rest unavailable.
type Fundamentals struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Industry string `json:"industry"`
	Country  string `json:"country"`
	Currency string `json:"currency"` // ISO-like code, "USD" when the provider is silent

	EPS               Amount `json:"eps"` // trailing twelve months
	BookValuePerShare Amount `json:"book_value_per_share"`
	PERatio           Amount `json:"pe_ratio"` // trailing P/E
	EnterpriseValue   Amount `json:"enterprise_value"`
	EBITDA            Amount `json:"ebitda"`
	SharesOutstanding Amount `json:"shares_outstanding"`
	MarketCap         Amount `json:"market_cap"`
	CurrentPrice      Amount `json:"current_price"`
}

// PriceBar is one daily OHLC observation.
type PriceBar struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// PriceSeries is an ordered sequence of daily bars over the lookback window.
// May be empty; it feeds high/low banding only, never the valuation math.
type PriceSeries []PriceBar

// MaxHigh returns the highest high in the series, unavailable when empty.
func (s PriceSeries) MaxHigh() Amount {
	if len(s) == 0 {
		return Amount{}
	}

	max := s[0].High
	for _, bar := range s[1:] {
		if bar.High > max {
			max = bar.High
		}
	}
	return AmountOf(max)
}

// MinLow returns the lowest low in the series, unavailable when empty.
func (s PriceSeries) MinLow() Amount {
	if len(s) == 0 {
		return Amount{}
	}

	min := s[0].Low
	for _, bar := range s[1:] {
		if bar.Low < min {
			min = bar.Low
		}
	}
	return AmountOf(min)
}

// SymbolMatch is one symbol search result.
type SymbolMatch struct {
	Symbol      string `json:"symbol"`
	DisplayName string `json:"display_name"`
	Exchange    string `json:"exchange"`
}
