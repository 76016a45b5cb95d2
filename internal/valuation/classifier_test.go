package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fairvalue/internal/contracts"
)

func TestClassify_Bands(t *testing.T) {
	tests := []struct {
		name      string
		fairPrice float64
		wantPct   float64
		wantBand  contracts.Band
	}{
		{"deeply negative gap", 80, -20.00, contracts.BandOverValued},
		{"just under 5", 104, 4.00, contracts.BandOverValued},
		{"exactly 5", 105, 5.00, contracts.BandFairPremium},
		{"between 5 and 18", 110, 10.00, contracts.BandFairPremium},
		{"exactly 18", 118, 18.00, contracts.BandFairPremium},
		{"just over 18", 118.5, 18.50, contracts.BandUndervalued},
		{"exactly 20", 120, 20.00, contracts.BandUndervalued},
		{"just over 20", 120.5, 20.50, contracts.BandHighValue},
		{"exactly 30", 130, 30.00, contracts.BandHighValue},
		{"just over 30", 130.5, 30.50, contracts.BandDeepDiscount},
		{"far over 30", 200, 100.00, contracts.BandDeepDiscount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.fairPrice, 100)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBand, got.Band)
			assert.Equal(t, tt.wantPct, got.UndervaluedPct)
		})
	}
}

func TestClassify_Signal(t *testing.T) {
	buy, err := Classify(130, 100)
	require.NoError(t, err)
	assert.Equal(t, contracts.SignalBuy, buy.Signal)

	hold, err := Classify(90, 100)
	require.NoError(t, err)
	assert.Equal(t, contracts.SignalHoldSell, hold.Signal)

	// Fair price equal to current price is not a buy
	flat, err := Classify(100, 100)
	require.NoError(t, err)
	assert.Equal(t, contracts.SignalHoldSell, flat.Signal)
}

func TestClassify_InvalidPrices(t *testing.T) {
	_, err := Classify(130, 0)
	assert.ErrorIs(t, err, ErrInvalidCurrentPrice)

	_, err = Classify(130, -10)
	assert.ErrorIs(t, err, ErrInvalidCurrentPrice)

	_, err = Classify(0, 100)
	assert.ErrorIs(t, err, ErrInvalidFairPrice)

	_, err = Classify(-5, 100)
	assert.ErrorIs(t, err, ErrInvalidFairPrice)
}
