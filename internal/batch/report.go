package batch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/fairvalue/internal/contracts"
)

// SortColumn names a numeric snapshot column for ranking.
type SortColumn string

const (
	SortByUndervaluedPct SortColumn = "undervalued_pct"
	SortByExpectedReturn SortColumn = "expected_return_pct"
	SortByCombined       SortColumn = "combined"
	SortByCurrentPrice   SortColumn = "current_price"
)

// ParseSortColumn converts a user-supplied string into a SortColumn.
func ParseSortColumn(s string) (SortColumn, error) {
	switch SortColumn(s) {
	case SortByUndervaluedPct, SortByExpectedReturn, SortByCombined, SortByCurrentPrice:
		return SortColumn(s), nil
	default:
		return "", fmt.Errorf("unknown sort column %q", s)
	}
}

// FilterByName keeps snapshots whose symbol or company name contains the
// query, case-insensitively. An empty query keeps everything.
func FilterByName(snapshots []*contracts.Snapshot, query string) []*contracts.Snapshot {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return snapshots
	}

	kept := make([]*contracts.Snapshot, 0, len(snapshots))
	for _, snap := range snapshots {
		if strings.Contains(strings.ToLower(snap.Symbol), query) ||
			strings.Contains(strings.ToLower(snap.Name), query) {
			kept = append(kept, snap)
		}
	}
	return kept
}

// SortBy orders snapshots by the chosen column, highest first. Rows whose
// column is unavailable sort after every available row; ties keep their
// original order.
func SortBy(snapshots []*contracts.Snapshot, column SortColumn) {
	sort.SliceStable(snapshots, func(i, j int) bool {
		a, aOK := columnValue(snapshots[i], column)
		b, bOK := columnValue(snapshots[j], column)

		if aOK != bOK {
			return aOK
		}
		if !aOK {
			return false
		}
		return a > b
	})
}

func columnValue(snap *contracts.Snapshot, column SortColumn) (float64, bool) {
	switch column {
	case SortByUndervaluedPct:
		return snap.UndervaluedPct.Float64, snap.UndervaluedPct.Valid
	case SortByExpectedReturn:
		return snap.ExpectedReturnPct.Float64, snap.ExpectedReturnPct.Valid
	case SortByCombined:
		return snap.Combined.Float64, snap.Combined.Valid
	case SortByCurrentPrice:
		return snap.CurrentPrice, true
	default:
		return 0, false
	}
}
