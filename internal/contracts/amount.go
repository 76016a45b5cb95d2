package contracts

import (
	"bytes"
	"encoding/json"
)

// Amount is an optional decimal value. The zero value is "unavailable".
//
// Missing inputs and zero are distinct states: a formula gated on eps > 0
// must treat an absent EPS as unavailable, never as zero. Amount exists so
// that distinction survives JSON round trips (unavailable marshals as null).
type Amount struct {
	Float64 float64
	Valid   bool
}

// AmountOf returns a valid Amount holding v.
func AmountOf(v float64) Amount {
	return Amount{Float64: v, Valid: true}
}

// Or returns the held value, or fallback when unavailable.
func (a Amount) Or(fallback float64) float64 {
	if a.Valid {
		return a.Float64
	}
	return fallback
}

// Positive reports whether the amount is available and strictly positive.
func (a Amount) Positive() bool {
	return a.Valid && a.Float64 > 0
}

var jsonNull = []byte("null")

// MarshalJSON encodes the amount as a number, or null when unavailable.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return jsonNull, nil
	}
	return json.Marshal(a.Float64)
}

// UnmarshalJSON decodes a number or null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*a = Amount{}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = AmountOf(v)
	return nil
}
