// Package units converts body measurements between metric and imperial.
//
// Every function works on Number, which carries an explicit Valid flag so
// callers can tell an unknown measurement apart from zero.
package units

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	// LbPerKg is the number of pounds in one kilogram.
	LbPerKg = 2.2046226218
	// CmPerIn is the number of centimeters in one inch.
	CmPerIn = 2.54

	epsilon = 0x1p-52
)

// Number is a measurement that may be absent.
type Number struct {
	Value float64
	Valid bool
}

// None is the absent measurement.
var None = Number{}

// Of wraps v; NaN and infinities are treated as absent.
func Of(v float64) Number {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return None
	}
	return Number{Value: v, Valid: true}
}

// OfPtr wraps an optional value decoded from JSON.
func OfPtr(v *float64) Number {
	if v == nil {
		return None
	}
	return Of(*v)
}

// Parse reads a user-typed number. Blank or non-numeric input is absent.
func Parse(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return None
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return None
	}
	return Of(v)
}

func (n Number) apply(f func(float64) float64) Number {
	if !n.Valid {
		return None
	}
	return Of(f(n.Value))
}

// KgToLb converts kilograms to pounds.
func KgToLb(n Number) Number { return n.apply(func(v float64) float64 { return v * LbPerKg }) }

// LbToKg converts pounds to kilograms.
func LbToKg(n Number) Number { return n.apply(func(v float64) float64 { return v / LbPerKg }) }

// CmToIn converts centimeters to inches.
func CmToIn(n Number) Number { return n.apply(func(v float64) float64 { return v / CmPerIn }) }

// InToCm converts inches to centimeters.
func InToCm(n Number) Number { return n.apply(func(v float64) float64 { return v * CmPerIn }) }

// Round0 rounds to a whole number.
func Round0(n Number) Number { return round(n, 0) }

// Round1 rounds to one decimal place.
func Round1(n Number) Number { return round(n, 1) }

// round is half-away-from-zero on (v + epsilon) * 10^places.
func round(n Number, places int) Number {
	return n.apply(func(v float64) float64 {
		p := math.Pow(10, float64(places))
		return math.Round((v+epsilon)*p) / p
	})
}

// String renders the shortest exact decimal form of the value, or "" when
// absent. Round first to limit the digits.
func (n Number) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// Ptr returns the value as a pointer, nil when absent.
func (n Number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// MarshalJSON encodes an absent number as null.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON accepts numbers, numeric strings and null.
func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*n = None
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*n = Parse(raw)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*n = None
		return nil
	}
	*n = Of(v)
	return nil
}
