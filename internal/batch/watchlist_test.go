package batch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fairvalue/internal/contracts"
)

func TestParseWatchlist(t *testing.T) {
	csvBody := `Symbol,Name,Sector
aapl,Apple Inc.,Technology
MSFT,Microsoft,Technology

AAPL,Apple duplicate,Technology
,No symbol,Misc
TSLA,Tesla,Automotive
`

	entries, err := ParseWatchlist(strings.NewReader(csvBody))
	require.NoError(t, err)

	require.Len(t, entries, 3, "duplicates and blank symbols are dropped")
	assert.Equal(t, "AAPL", entries[0].Symbol, "symbols are upper-cased")
	assert.Equal(t, "Apple Inc.", entries[0].Name, "first occurrence wins")
	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, Symbols(entries))
}

func TestParseWatchlist_TickerHeaderAlias(t *testing.T) {
	entries, err := ParseWatchlist(strings.NewReader("Ticker,Company\nNVDA,NVIDIA\n"))
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "NVDA", entries[0].Symbol)
	assert.Equal(t, "NVIDIA", entries[0].Name)
}

func TestParseWatchlist_MissingSymbolColumn(t *testing.T) {
	_, err := ParseWatchlist(strings.NewReader("Name,Sector\nApple,Technology\n"))
	require.Error(t, err)

	var confErr *contracts.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Contains(t, confErr.Reason, "Symbol")
}

func TestParseWatchlist_Empty(t *testing.T) {
	_, err := ParseWatchlist(strings.NewReader(""))
	require.Error(t, err)

	var confErr *contracts.ConfigurationError
	assert.ErrorAs(t, err, &confErr)
}

func TestParseWatchlist_HeaderOnly(t *testing.T) {
	entries, err := ParseWatchlist(strings.NewReader("Symbol\n"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
