// Package money holds the currency arithmetic shared by the cart, checkout and
// order flows. Amounts are accumulated exactly and rounded only when they are
// displayed or charged.
package money

import "github.com/shopspring/decimal"

// Places is the currency precision in decimal places.
const Places = 2

const minorUnitsPerMajor = 100

var hundred = decimal.NewFromInt(minorUnitsPerMajor)

// Round rounds half away from zero to currency precision.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

func Format(d decimal.Decimal) string {
	return "$" + Round(d).StringFixed(Places)
}

// ToMinorUnits converts a major-unit amount to the payment provider's integer
// representation (cents), rounding rather than truncating.
func ToMinorUnits(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

func FromMinorUnits(n int64) decimal.Decimal {
	return decimal.NewFromInt(n).Div(hundred)
}

func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}

	return total
}

// Equal compares two amounts at currency precision.
func Equal(a, b decimal.Decimal) bool {
	return Round(a).Equal(Round(b))
}
