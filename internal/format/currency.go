package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/fairvalue/internal/contracts"
)

// Placeholder shown for unavailable values.
const Placeholder = "-"

var currencySymbols = map[string]string{
	"USD": "$",
	"INR": "₹",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// Symbol returns the display symbol for a currency code. Unknown codes fall
// back to the code itself.
func Symbol(code string) string {
	if sym, ok := currencySymbols[code]; ok {
		return sym
	}
	return code
}

// Currency renders an amount as a currency string with thousands grouping
// and two decimals, e.g. "$1,234.50". Unavailable amounts render as "-".
func Currency(a contracts.Amount, code string) string {
	if !a.Valid {
		return Placeholder
	}

	d := decimal.NewFromFloat(a.Float64).Round(2)
	negative := d.IsNegative()
	fixed := d.Abs().StringFixed(2)

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	grouped := groupThousands(intPart)

	sign := ""
	if negative {
		sign = "-"
	}

	return fmt.Sprintf("%s%s%s.%s", sign, Symbol(code), grouped, fracPart)
}

// Percent renders an amount as a percentage with two decimals.
func Percent(a contracts.Amount) string {
	if !a.Valid {
		return Placeholder
	}
	return fmt.Sprintf("%.2f%%", a.Float64)
}

// ParseCurrency parses a string produced by Currency back into an amount.
// The placeholder parses to unavailable; anything else malformed is an error.
func ParseCurrency(s string) (contracts.Amount, error) {
	s = strings.TrimSpace(s)
	if s == Placeholder || s == "" {
		return contracts.Amount{}, nil
	}

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	// Strip any known symbol or leading currency code
	for _, sym := range currencySymbols {
		s = strings.TrimPrefix(s, sym)
	}
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return r >= 'A' && r <= 'Z'
	})

	s = strings.ReplaceAll(s, ",", "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return contracts.Amount{}, fmt.Errorf("parse currency %q: %w", s, err)
	}

	if negative {
		v = -v
	}
	return contracts.AmountOf(v), nil
}

// groupThousands inserts commas into a digit string.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
