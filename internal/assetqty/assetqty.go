// Package assetqty edits the numeric part of unit-carrying asset amounts such
// as "10 Gram" or "$1,000" while keeping the surrounding text intact.
package assetqty

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoQuantity is returned when the amount text carries no number.
	ErrNoQuantity = errors.New("amount has no numeric part")
	// ErrInvalidChange is returned when the change text does not start with a number.
	ErrInvalidChange = errors.New("change is not a number")
)

var (
	quantityPattern = regexp.MustCompile(`[0-9]+(\.[0-9]+)?`)
	leadingNumber   = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)`)
)

// Quantity is a parsed amount string.
type Quantity struct {
	Prefix string
	Value  decimal.Decimal
	Suffix string
}

// Parse splits an amount string into prefix, number and suffix. Thousands
// separators are dropped first, so "$1,000" yields prefix "$" and 1000.
func Parse(amount string) (Quantity, error) {
	clean := strings.ReplaceAll(amount, ",", "")
	loc := quantityPattern.FindStringIndex(clean)
	if loc == nil {
		return Quantity{}, ErrNoQuantity
	}
	v, err := decimal.NewFromString(clean[loc[0]:loc[1]])
	if err != nil {
		return Quantity{}, ErrNoQuantity
	}
	return Quantity{Prefix: clean[:loc[0]], Value: v, Suffix: clean[loc[1]:]}, nil
}

// ParseChange reads the leading number of a user-typed change such as "2,5" or "5 gram".
func ParseChange(change string) (decimal.Decimal, error) {
	s := strings.Replace(strings.TrimSpace(change), ",", ".", 1)
	m := leadingNumber.FindString(s)
	if m == "" || m == "+" || m == "-" {
		return decimal.Zero, ErrInvalidChange
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(m, "."))
	if err != nil {
		return decimal.Zero, ErrInvalidChange
	}
	return d, nil
}

// String renders the quantity back with its original prefix and suffix.
// Whole numbers get en-US digit grouping, anything else two decimals.
func (q Quantity) String() string {
	return q.Prefix + formatValue(q.Value) + q.Suffix
}

func formatValue(v decimal.Decimal) string {
	if v.IsInteger() {
		return groupDigits(v.String())
	}
	return v.StringFixed(2)
}

// groupDigits inserts en-US thousands separators into an integer string.
func groupDigits(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String()
}

// Adjust adds (buy) or subtracts change from the amount string, flooring at zero.
func Adjust(amount, change string, buy bool) (string, error) {
	q, err := Parse(amount)
	if err != nil {
		return "", err
	}
	delta, err := ParseChange(change)
	if err != nil {
		return "", err
	}
	if buy {
		q.Value = q.Value.Add(delta)
	} else {
		q.Value = q.Value.Sub(delta)
	}
	if q.Value.IsNegative() {
		q.Value = decimal.Zero
	}
	return q.String(), nil
}

// Value returns just the numeric part of an amount string, or zero.
func Value(amount string) decimal.Decimal {
	q, err := Parse(amount)
	if err != nil {
		return decimal.Zero
	}
	return q.Value
}
