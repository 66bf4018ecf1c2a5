package models

import (
	"bytes"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a monetary figure in the reference currency. Stored records may
// carry it as a JSON number or a numeric string; anything that does not parse
// decodes to zero so totals never pick up garbage.
type Amount float64

// UnmarshalJSON accepts numbers, numeric strings and null.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(bytes.Trim(b, `"`)))
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		*a = 0
		return nil
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		*a = 0
		return nil
	}
	*a = Amount(f)
	return nil
}

// Float64 returns the amount as a plain float.
func (a Amount) Float64() float64 {
	return float64(a)
}
