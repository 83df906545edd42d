/*
Package generic provides the core billing engine types.

PURPOSE:
  This package contains plan-agnostic types shared by every contract kind:
  monetary amounts, billing months, the ledger a contract writes into each
  month, and the errors the engine reports. Contract variants (month-to-month,
  term, prepaid) live in the contract package and only talk to the ledger
  through the interface defined here.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (e.g., $50.00, 100 minutes)
  - PlanTag: Which pricing plan owns a bill
  - CustomerID / PhoneNumber: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors in money
  2. Type Safety: Strong typing for IDs prevents mixing customers and numbers
  3. Plan-agnostic: Nothing here knows the rates of a concrete plan

USAGE:
  fee := generic.NewAmount(50, generic.UnitDollars)
  rate := generic.MustParseAmount("0.05", generic.UnitDollars)
  cost := fee.Add(rate.MulInt(12))

SEE ALSO:
  - ledger.go: Ledger interface and the Bill implementation
  - time.go: BillingMonth and Clock
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitDollars Unit = "dollars"
	UnitMinutes Unit = "minutes"
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromInt(value int, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

// Dollars is shorthand for NewAmount(value, UnitDollars).
func Dollars(value float64) Amount { return NewAmount(value, UnitDollars) }

// ParseAmount parses a decimal string such as "0.025".
func ParseAmount(s string, unit Unit) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Value: d, Unit: unit}, nil
}

// MustParseAmount is ParseAmount for constants; it panics on malformed input.
func MustParseAmount(s string, unit Unit) Amount {
	a, err := ParseAmount(s, unit)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) MulInt(n int) Amount          { return a.Mul(decimal.NewFromInt(int64(n))) }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }

func (a Amount) Max(b Amount) Amount {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// String renders the value with two decimal places for dollars.
func (a Amount) String() string {
	if a.Unit == UnitDollars {
		return a.Value.StringFixed(2)
	}
	return a.Value.String()
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type CustomerID int
type PhoneNumber string
type BillID string

// PlanTag identifies the pricing plan that configured a bill.
type PlanTag string

const (
	PlanMonthToMonth PlanTag = "MTM"
	PlanTerm         PlanTag = "TERM"
	PlanPrepaid      PlanTag = "PREPAID"
)
