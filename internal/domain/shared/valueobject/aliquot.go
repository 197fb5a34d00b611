package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AliquotSumTolerance is the tolerance allowed when checking that a
// condominium's eligible aliquots add up to 100%.
var AliquotSumTolerance = decimal.NewFromFloat(0.01)

var hundred = decimal.NewFromInt(100)

// Aliquot is a property's proportional share of a condominium's common
// expenses, expressed as a percentage in [0, 100].
type Aliquot struct {
	value decimal.Decimal
}

// NewAliquot creates an Aliquot, rejecting values outside [0, 100]
func NewAliquot(value decimal.Decimal) (Aliquot, error) {
	if value.IsNegative() {
		return Aliquot{}, fmt.Errorf("aliquot cannot be negative: %s", value)
	}
	if value.GreaterThan(hundred) {
		return Aliquot{}, fmt.Errorf("aliquot cannot exceed 100: %s", value)
	}
	return Aliquot{value: value}, nil
}

// NewAliquotFromString parses an aliquot from its decimal string form
func NewAliquotFromString(s string) (Aliquot, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Aliquot{}, fmt.Errorf("invalid aliquot string: %w", err)
	}
	return NewAliquot(d)
}

// MustNewAliquot creates an Aliquot, panicking on invalid input. Test helper.
func MustNewAliquot(value float64) Aliquot {
	a, err := NewAliquot(decimal.NewFromFloat(value))
	if err != nil {
		panic(err)
	}
	return a
}

// Value returns the percentage as a decimal
func (a Aliquot) Value() decimal.Decimal {
	return a.value
}

// IsZero returns true if the aliquot is zero
func (a Aliquot) IsZero() bool {
	return a.value.IsZero()
}

// ShareOf returns the fraction of total this aliquot represents,
// unrounded - callers apply ledger rounding.
func (a Aliquot) ShareOf(total Money) Money {
	return total.Multiply(a.value.Div(hundred))
}

// Add returns the sum of two aliquots as a raw decimal; the sum of a full
// aliquot set legitimately reaches 100 so no range check applies here.
func (a Aliquot) Add(other Aliquot) decimal.Decimal {
	return a.value.Add(other.value)
}

// GreaterThan returns true if this aliquot is larger than the other
func (a Aliquot) GreaterThan(other Aliquot) bool {
	return a.value.GreaterThan(other.value)
}

// String returns the percentage in fixed form, e.g. "12.50"
func (a Aliquot) String() string {
	return a.value.StringFixed(2)
}

// SumAliquots adds up a set of aliquots
func SumAliquots(aliquots []Aliquot) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range aliquots {
		sum = sum.Add(a.value)
	}
	return sum
}

// AliquotSumDelta returns how far a sum is from 100%
func AliquotSumDelta(sum decimal.Decimal) decimal.Decimal {
	return sum.Sub(hundred)
}

// AliquotSumIsComplete reports whether the sum equals 100% within tolerance
func AliquotSumIsComplete(sum decimal.Decimal) bool {
	return AliquotSumDelta(sum).Abs().LessThanOrEqual(AliquotSumTolerance)
}
