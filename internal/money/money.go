// Package money provides fixed-point monetary arithmetic in minor units
// (cents). Ledger math accumulates in integer cents so repeated additions
// never drift; conversion to and from decimal amounts happens only at the
// API boundary.
package money

import (
	"fmt"
	"math"
	"strconv"
)

// Cents is a signed monetary amount in minor units (1/100 of the nominal
// currency unit). It marshals to JSON as a decimal number with two
// fractional digits, which is the wire format the frontend expects.
type Cents int64

// FromFloat converts a decimal amount (e.g. 33.34) to cents, rounding
// half away from zero.
func FromFloat(amount float64) Cents {
	return Cents(math.Round(amount * 100))
}

// Float64 converts cents back to a decimal amount.
func (c Cents) Float64() float64 {
	return float64(c) / 100
}

// Abs returns the absolute value.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

// String formats the amount as a decimal with two fractional digits.
func (c Cents) String() string {
	sign := ""
	v := c
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the amount as a plain decimal number, e.g. 33.34.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON decodes a decimal number into cents, rounding half away
// from zero.
func (c *Cents) UnmarshalJSON(data []byte) error {
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid monetary amount %q: %w", data, err)
	}
	*c = FromFloat(f)
	return nil
}

// SplitEqual divides total into n shares. The per-head share is total/n
// rounded to the nearest cent (half away from zero) and the rounding
// remainder is assigned entirely to the first share, so the shares always
// sum exactly to total. Returns nil if n <= 0.
func SplitEqual(total Cents, n int) []Cents {
	if n <= 0 {
		return nil
	}
	share := roundDiv(int64(total), int64(n))
	shares := make([]Cents, n)
	for i := range shares {
		shares[i] = Cents(share)
	}
	shares[0] += total - Cents(share*int64(n))
	return shares
}

// roundDiv divides a by b rounding half away from zero.
func roundDiv(a, b int64) int64 {
	if b == 0 {
		return 0
	}
	neg := (a < 0) != (b < 0)
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	q := (2*a + b) / (2 * b)
	if neg {
		return -q
	}
	return q
}
