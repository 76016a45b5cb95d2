package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/fairvalue/internal/contracts"
)

func TestDCF(t *testing.T) {
	// 10 × 1.08 / (0.10 − 0.08) = 540.00
	got := DCF(contracts.AmountOf(10), 0.08, 0.10)
	assert.Equal(t, contracts.AmountOf(540.00), got)
}

func TestDCF_InvalidInputs(t *testing.T) {
	tests := []struct {
		name         string
		eps          contracts.Amount
		growthRate   float64
		discountRate float64
	}{
		{"zero eps", contracts.AmountOf(0), 0.08, 0.10},
		{"negative eps", contracts.AmountOf(-2.5), 0.08, 0.10},
		{"missing eps", contracts.Amount{}, 0.08, 0.10},
		{"discount equals growth", contracts.AmountOf(10), 0.10, 0.10},
		{"discount below growth", contracts.AmountOf(10), 0.12, 0.10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DCF(tt.eps, tt.growthRate, tt.discountRate)
			assert.False(t, got.Valid, "estimate should be unavailable")
		})
	}
}

func TestGraham(t *testing.T) {
	// sqrt(22.5 × 4 × 20) = sqrt(1800) = 42.43
	got := Graham(contracts.AmountOf(4), contracts.AmountOf(20))
	assert.Equal(t, contracts.AmountOf(42.43), got)
}

func TestGraham_InvalidInputs(t *testing.T) {
	tests := []struct {
		name string
		eps  contracts.Amount
		bvps contracts.Amount
	}{
		{"zero eps", contracts.AmountOf(0), contracts.AmountOf(20)},
		{"negative eps", contracts.AmountOf(-4), contracts.AmountOf(20)},
		{"missing eps", contracts.Amount{}, contracts.AmountOf(20)},
		{"zero bvps", contracts.AmountOf(4), contracts.AmountOf(0)},
		{"negative bvps", contracts.AmountOf(4), contracts.AmountOf(-20)},
		{"missing bvps", contracts.AmountOf(4), contracts.Amount{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Graham(tt.eps, tt.bvps)
			assert.False(t, got.Valid, "estimate should be unavailable")
		})
	}
}

func TestPEMultiple(t *testing.T) {
	got := PEMultiple(contracts.AmountOf(5), contracts.AmountOf(15))
	assert.Equal(t, contracts.AmountOf(75.00), got)
}

func TestPEMultiple_DefaultRatio(t *testing.T) {
	// Missing trailing P/E falls back to 15, it is not treated as zero.
	got := PEMultiple(contracts.AmountOf(5), contracts.Amount{})
	assert.Equal(t, contracts.AmountOf(75.00), got)
}

func TestPEMultiple_InvalidInputs(t *testing.T) {
	assert.False(t, PEMultiple(contracts.AmountOf(0), contracts.AmountOf(15)).Valid)
	assert.False(t, PEMultiple(contracts.AmountOf(-5), contracts.AmountOf(15)).Valid)
	assert.False(t, PEMultiple(contracts.Amount{}, contracts.AmountOf(15)).Valid)
	assert.False(t, PEMultiple(contracts.AmountOf(5), contracts.AmountOf(-8)).Valid)
}

func TestEVBased(t *testing.T) {
	// multiple = 1000/100 = 10, projected EBITDA = 110, projected EV = 1100,
	// fair price = 1100/50 = 22.00
	got := EVBased(
		contracts.AmountOf(1000),
		contracts.AmountOf(100),
		contracts.AmountOf(50),
		0.10,
	)
	assert.Equal(t, contracts.AmountOf(22.00), got)
}

func TestEVBased_InvalidInputs(t *testing.T) {
	ev := contracts.AmountOf(1000)
	ebitda := contracts.AmountOf(100)
	shares := contracts.AmountOf(50)

	tests := []struct {
		name               string
		ev, ebitda, shares contracts.Amount
	}{
		{"missing ev", contracts.Amount{}, ebitda, shares},
		{"zero ev", contracts.AmountOf(0), ebitda, shares},
		{"missing ebitda", ev, contracts.Amount{}, shares},
		{"zero ebitda", ev, contracts.AmountOf(0), shares},
		{"negative ebitda", ev, contracts.AmountOf(-100), shares},
		{"missing shares", ev, ebitda, contracts.Amount{}},
		{"zero shares", ev, ebitda, contracts.AmountOf(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EVBased(tt.ev, tt.ebitda, tt.shares, 0.10)
			assert.False(t, got.Valid, "estimate should be unavailable")
		})
	}
}

func TestEstimate(t *testing.T) {
	f := &contracts.Fundamentals{
		Symbol:            "TEST",
		EPS:               contracts.AmountOf(10),
		BookValuePerShare: contracts.AmountOf(40),
		PERatio:           contracts.AmountOf(18),
		EnterpriseValue:   contracts.AmountOf(1000),
		EBITDA:            contracts.AmountOf(100),
		SharesOutstanding: contracts.AmountOf(50),
	}

	est := Estimate(f)
	assert.Equal(t, contracts.AmountOf(22.00), est.EV)
	assert.Equal(t, contracts.AmountOf(540.00), est.DCF)
	assert.Equal(t, contracts.AmountOf(94.87), est.Graham) // sqrt(22.5×10×40) = sqrt(9000)
	assert.Equal(t, contracts.AmountOf(180.00), est.PE)
}

func TestEstimate_LossMakingCompany(t *testing.T) {
	f := &contracts.Fundamentals{
		Symbol:            "LOSS",
		EPS:               contracts.AmountOf(-3.2),
		BookValuePerShare: contracts.AmountOf(12),
	}

	est := Estimate(f)
	assert.False(t, est.DCF.Valid)
	assert.False(t, est.Graham.Valid)
	assert.False(t, est.PE.Valid)
	assert.False(t, est.EV.Valid)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 42.43, Round2(42.42640687119285))
	assert.Equal(t, 42.42, Round2(42.424))
	// Half rounds away from zero
	assert.Equal(t, 1.13, Round2(1.125))
	assert.Equal(t, -1.13, Round2(-1.125))
}
