package contracts

import (
	"encoding/json"
	"testing"
)

func TestAmount_ZeroValueIsUnavailable(t *testing.T) {
	var a Amount
	if a.Valid {
		t.Error("zero value should be unavailable")
	}
	if a.Or(15) != 15 {
		t.Errorf("Or(15) = %v, want 15", a.Or(15))
	}
}

func TestAmount_MissingIsNotZero(t *testing.T) {
	missing := Amount{}
	zero := AmountOf(0)

	if missing == zero {
		t.Error("missing and zero must be distinct states")
	}
	if missing.Positive() {
		t.Error("missing should not be positive")
	}
	if zero.Positive() {
		t.Error("zero should not be positive")
	}
	if !AmountOf(0.01).Positive() {
		t.Error("0.01 should be positive")
	}
}

func TestAmount_JSON(t *testing.T) {
	tests := []struct {
		name   string
		amount Amount
		want   string
	}{
		{"available", AmountOf(42.43), "42.43"},
		{"zero", AmountOf(0), "0"},
		{"unavailable", Amount{}, "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.amount)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal = %s, want %s", data, tt.want)
			}

			var decoded Amount
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if decoded != tt.amount {
				t.Errorf("round trip = %+v, want %+v", decoded, tt.amount)
			}
		})
	}
}

func TestAmount_JSONInsideStruct(t *testing.T) {
	original := Fundamentals{
		Symbol:       "AAPL",
		Currency:     "USD",
		EPS:          AmountOf(6.42),
		CurrentPrice: AmountOf(189.37),
		// EBITDA left unavailable
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Fundamentals
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded.EPS != original.EPS {
		t.Errorf("EPS = %+v, want %+v", decoded.EPS, original.EPS)
	}
	if decoded.EBITDA.Valid {
		t.Error("EBITDA should remain unavailable after round trip")
	}
}
