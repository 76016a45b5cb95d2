package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fairvalue/internal/contracts"
)

func snap(symbol, name string, undervalued contracts.Amount) *contracts.Snapshot {
	return &contracts.Snapshot{
		Symbol:         symbol,
		Name:           name,
		UndervaluedPct: undervalued,
	}
}

func TestFilterByName(t *testing.T) {
	snaps := []*contracts.Snapshot{
		snap("AAPL", "Apple Inc.", contracts.Amount{}),
		snap("MSFT", "Microsoft Corporation", contracts.Amount{}),
		snap("APLE", "Apple Hospitality REIT", contracts.Amount{}),
	}

	assert.Len(t, FilterByName(snaps, "apple"), 2)
	assert.Len(t, FilterByName(snaps, "msft"), 1)
	assert.Len(t, FilterByName(snaps, "  "), 3, "blank query keeps everything")
	assert.Empty(t, FilterByName(snaps, "tesla"))
}

func TestSortBy_UnavailableLast(t *testing.T) {
	snaps := []*contracts.Snapshot{
		snap("LOW", "", contracts.AmountOf(5)),
		snap("NONE", "", contracts.Amount{}),
		snap("HIGH", "", contracts.AmountOf(35)),
		snap("MID", "", contracts.AmountOf(20)),
	}

	SortBy(snaps, SortByUndervaluedPct)

	order := make([]string, len(snaps))
	for i, s := range snaps {
		order[i] = s.Symbol
	}
	assert.Equal(t, []string{"HIGH", "MID", "LOW", "NONE"}, order)
}

func TestSortBy_TiesKeepOrder(t *testing.T) {
	snaps := []*contracts.Snapshot{
		snap("A", "", contracts.AmountOf(10)),
		snap("B", "", contracts.AmountOf(10)),
		snap("C", "", contracts.AmountOf(30)),
	}

	SortBy(snaps, SortByUndervaluedPct)

	assert.Equal(t, "C", snaps[0].Symbol)
	assert.Equal(t, "A", snaps[1].Symbol)
	assert.Equal(t, "B", snaps[2].Symbol)
}

func TestSortBy_CurrentPrice(t *testing.T) {
	a := snap("A", "", contracts.Amount{})
	a.CurrentPrice = 10
	b := snap("B", "", contracts.Amount{})
	b.CurrentPrice = 250

	snaps := []*contracts.Snapshot{a, b}
	SortBy(snaps, SortByCurrentPrice)
	assert.Equal(t, "B", snaps[0].Symbol)
}

func TestParseSortColumn(t *testing.T) {
	col, err := ParseSortColumn("undervalued_pct")
	require.NoError(t, err)
	assert.Equal(t, SortByUndervaluedPct, col)

	_, err = ParseSortColumn("band")
	assert.Error(t, err)
}
