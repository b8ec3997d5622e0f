/*
Package generic provides the date and quantity primitives of the leave engine.

PURPOSE:
  Domain-agnostic building blocks shared by the entitlement engine, the
  record codec, the stores and the HTTP surface:
  - TimePoint / Period: immutable calendar dates and inclusive ranges
  - Amount: a day quantity at half-day granularity
  - Errors: the data-quality taxonomy recorded by the engine

DESIGN PRINCIPLES:
  1. Immutability: every operation returns a new value
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Calendar semantics: dates carry no time-of-day and no zone

USAGE:
  hire := generic.MustParseDate("2023-07-10")
  next := generic.MonthlyStep(hire, 1)      // 2023-08-10
  half := generic.NewAmount(0.5, generic.UnitDays)

SEE ALSO:
  - time.go: date arithmetic (anniversaries, monthly steps, inclusive spans)
  - period.go: inclusive ranges and overlap counting
  - errors.go: sentinel and structured errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit (always days for leave)
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitDays Unit = "days"
)

var (
	two  = decimal.NewFromInt(2)
	half = decimal.NewFromFloat(0.5)
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromInt(value int, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

// Days is shorthand for an amount in days.
func Days(value float64) Amount { return NewAmount(value, UnitDays) }

// ZeroDays is 0 days.
func ZeroDays() Amount { return Amount{Value: decimal.Zero, Unit: UnitDays} }

// HalfDay is the 0.5-day amount used for morning/afternoon leave.
func HalfDay() Amount { return Amount{Value: half, Unit: UnitDays} }

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }
func (a Amount) Float64() float64             { return a.Value.InexactFloat64() }
func (a Amount) String() string               { return a.Value.String() }

func (a Amount) Min(b Amount) Amount {
	if a.LessThan(b) {
		return a
	}
	return b
}

func (a Amount) Max(b Amount) Amount {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// FloorZero clamps negative amounts to zero.
func (a Amount) FloorZero() Amount {
	if a.IsNegative() {
		return a.Zero()
	}
	return a
}

// RoundHalf rounds to the nearest 0.5 (half-day granularity). Ties round
// away from zero, so 2.25 becomes 2.5.
func (a Amount) RoundHalf() Amount {
	return Amount{Value: a.Value.Mul(two).Round(0).Div(two), Unit: a.Unit}
}

// Sum adds amounts, returning zero days for an empty list.
func Sum(amounts ...Amount) Amount {
	total := ZeroDays()
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
