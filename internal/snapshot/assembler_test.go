package snapshot

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/provider"
	"github.com/wonny/fairvalue/internal/valuation"
	"github.com/wonny/fairvalue/pkg/logger"
)

type fakeProvider struct {
	fundamentals *contracts.Fundamentals
	fundErr      error
	history      contracts.PriceSeries
	historyErr   error
}

func (f *fakeProvider) Fundamentals(_ context.Context, _ string) (*contracts.Fundamentals, error) {
	if f.fundErr != nil {
		return nil, f.fundErr
	}
	out := *f.fundamentals
	return &out, nil
}

func (f *fakeProvider) PriceHistory(_ context.Context, _ string, _ int) (contracts.PriceSeries, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

func (f *fakeProvider) Search(_ context.Context, _ string) ([]contracts.SymbolMatch, error) {
	return nil, nil
}

func bar(high, low float64) contracts.PriceBar {
	return contracts.PriceBar{
		Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Open: low, High: high, Low: low, Close: high,
	}
}

// richCompany has every input present. EV estimate: multiple 10x, EBITDA
// grows 10%, so projected EV 1.1e12 over 1e10 shares = 110 per share.
func richCompany() *contracts.Fundamentals {
	return &contracts.Fundamentals{
		Symbol:            "RICH",
		Name:              "Rich Industries",
		Industry:          "Machinery",
		Country:           "United States",
		Currency:          "USD",
		EPS:               contracts.AmountOf(5),
		BookValuePerShare: contracts.AmountOf(40),
		PERatio:           contracts.AmountOf(20),
		EnterpriseValue:   contracts.AmountOf(1e12),
		EBITDA:            contracts.AmountOf(1e11),
		SharesOutstanding: contracts.AmountOf(1e10),
		MarketCap:         contracts.AmountOf(950e9),
		CurrentPrice:      contracts.AmountOf(80),
	}
}

func TestAssemble_FullRecord(t *testing.T) {
	p := &fakeProvider{
		fundamentals: richCompany(),
		history:      contracts.PriceSeries{bar(120, 60), bar(100, 70)},
	}
	a := New(p, 3, logger.Discard())

	snap, err := a.Assemble(context.Background(), "RICH", contracts.DefaultWeights(), valuation.ModeTolerant)
	require.NoError(t, err)

	assert.Equal(t, "RICH", snap.Symbol)
	assert.Equal(t, "Rich Industries", snap.Name)
	assert.Equal(t, contracts.CapMega, snap.CapTier)
	assert.Equal(t, 80.0, snap.CurrentPrice)

	// EV 110, DCF 5*1.08/0.02=270, Graham sqrt(22.5*5*40)=67.08, PE 100.
	require.True(t, snap.Estimates.EV.Valid)
	assert.Equal(t, 110.0, snap.Estimates.EV.Float64)
	require.True(t, snap.Estimates.DCF.Valid)
	assert.Equal(t, 270.0, snap.Estimates.DCF.Float64)
	require.True(t, snap.Estimates.Graham.Valid)
	assert.Equal(t, 67.08, snap.Estimates.Graham.Float64)
	require.True(t, snap.Estimates.PE.Valid)
	assert.Equal(t, 100.0, snap.Estimates.PE.Float64)

	// Composite: (110*40 + 270*30 + 67.08*10 + 100*20)/100 = 151.71.
	require.True(t, snap.Combined.Valid)
	assert.Equal(t, 151.71, snap.Combined.Float64)
	require.True(t, snap.ExpectedReturnPct.Valid)
	assert.Equal(t, 89.64, snap.ExpectedReturnPct.Float64)

	// Band keys off EV alone: (110-80)/80 = 37.5% → Deep Discount, Buy.
	assert.Equal(t, contracts.BandDeepDiscount, snap.Band)
	assert.Equal(t, contracts.SignalBuy, snap.Signal)
	require.True(t, snap.UndervaluedPct.Valid)
	assert.Equal(t, 37.5, snap.UndervaluedPct.Float64)

	// Bands: low 60 → entry 63, high 120 → exit 114.
	require.True(t, snap.Low3Y.Valid)
	assert.Equal(t, 60.0, snap.Low3Y.Float64)
	require.True(t, snap.High3Y.Valid)
	assert.Equal(t, 120.0, snap.High3Y.Float64)
	assert.Equal(t, 63.0, snap.EntryPrice.Float64)
	assert.Equal(t, 114.0, snap.ExitPrice.Float64)

	assert.False(t, snap.FetchedAt.IsZero())
}

func TestAssemble_MissingPriceFails(t *testing.T) {
	f := richCompany()
	f.CurrentPrice = contracts.Amount{}
	a := New(&fakeProvider{fundamentals: f}, 3, logger.Discard())

	_, err := a.Assemble(context.Background(), "RICH", contracts.DefaultWeights(), valuation.ModeTolerant)
	require.Error(t, err)
	assert.ErrorIs(t, err, valuation.ErrInvalidCurrentPrice)
}

func TestAssemble_ProviderUnavailable(t *testing.T) {
	a := New(&fakeProvider{fundErr: fmt.Errorf("%w: nope", provider.ErrUnavailable)}, 3, logger.Discard())

	_, err := a.Assemble(context.Background(), "NOPE", contracts.DefaultWeights(), valuation.ModeTolerant)
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrUnavailable)
}

func TestAssemble_NoEVMeansNoBand(t *testing.T) {
	f := richCompany()
	f.EBITDA = contracts.Amount{}
	a := New(&fakeProvider{fundamentals: f, history: contracts.PriceSeries{bar(120, 60)}}, 3, logger.Discard())

	snap, err := a.Assemble(context.Background(), "RICH", contracts.DefaultWeights(), valuation.ModeTolerant)
	require.NoError(t, err)

	assert.False(t, snap.Estimates.EV.Valid)
	assert.Equal(t, contracts.BandUnknown, snap.Band)
	assert.Equal(t, contracts.SignalUnknown, snap.Signal)
	assert.False(t, snap.UndervaluedPct.Valid)

	// Composite renormalizes over DCF/Graham/PE in tolerant mode.
	assert.True(t, snap.Combined.Valid)
}

func TestAssemble_StrictModeIncomplete(t *testing.T) {
	f := richCompany()
	f.BookValuePerShare = contracts.Amount{}
	a := New(&fakeProvider{fundamentals: f}, 3, logger.Discard())

	_, err := a.Assemble(context.Background(), "RICH", contracts.DefaultWeights(), valuation.ModeStrict)
	require.Error(t, err)
	assert.ErrorIs(t, err, valuation.ErrIncompleteEstimates)
}

func TestAssemble_HistoryFailureDegradesBands(t *testing.T) {
	a := New(&fakeProvider{
		fundamentals: richCompany(),
		historyErr:   errors.New("chart endpoint down"),
	}, 3, logger.Discard())

	snap, err := a.Assemble(context.Background(), "RICH", contracts.DefaultWeights(), valuation.ModeTolerant)
	require.NoError(t, err)

	assert.False(t, snap.High3Y.Valid)
	assert.False(t, snap.Low3Y.Valid)
	assert.False(t, snap.EntryPrice.Valid)
	assert.False(t, snap.ExitPrice.Valid)
	assert.True(t, snap.Combined.Valid, "valuation side is unaffected")
}

func TestAssemble_EmptyHistory(t *testing.T) {
	a := New(&fakeProvider{fundamentals: richCompany(), history: contracts.PriceSeries{}}, 3, logger.Discard())

	snap, err := a.Assemble(context.Background(), "RICH", contracts.DefaultWeights(), valuation.ModeTolerant)
	require.NoError(t, err)

	assert.False(t, snap.EntryPrice.Valid)
	assert.False(t, snap.ExitPrice.Valid)
}
