/*
ledger.go - Per-month cost accumulator written by contracts

PURPOSE:
  A Ledger holds everything a single month of a single phone line costs:
  fixed charges, the remaining free-minute allowance, minutes billed at the
  per-minute rate, and the rate itself. Contracts configure a fresh Ledger
  at the start of every month and then record calls into it. The total is
  always derived, never stored:

    cost = fixed cost + billed minutes × per-minute rate

INVARIANTS:
  1. Free minutes never go below zero (SetFreeMinutes clamps).
  2. Billed minutes only grow within a month.
  3. One Ledger per line per month: a new month gets a new Ledger, the old
     one is kept as history but never written again.

EXAMPLE FLOW (term plan):
  1. NewMonth: AddFixedCost(20), SetRates(TERM, 0.10), AddFreeMinutes(100)
  2. 90-minute call: free 100 → 10
  3. 25-minute call: free 10 → 0, billed += 15
  Cost() = 20 + 15 × 0.10 = 21.50

SEE ALSO:
  - contract/: The only writers of a Ledger
  - account/phoneline.go: Owns one Bill per month
*/
package generic

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// LEDGER - What a contract writes into
// =============================================================================

// Ledger is the monthly accumulator a Contract configures and bills against.
type Ledger interface {
	// AddFixedCost adds a flat charge (may be negative for carried credit).
	AddFixedCost(amount Amount)

	// SetRates records the owning plan and its per-minute rate.
	SetRates(plan PlanTag, perMinute Amount)

	// AddFreeMinutes grows the free-minute allowance.
	AddFreeMinutes(n int)

	// AddBilledMinutes records minutes charged at the per-minute rate.
	AddBilledMinutes(n int)

	// FreeMinutes returns the remaining allowance.
	FreeMinutes() int

	// SetFreeMinutes overwrites the remaining allowance, clamped at zero.
	SetFreeMinutes(n int)

	// Cost returns fixed cost + billed minutes × rate.
	Cost() Amount
}

// =============================================================================
// BILL - Default Ledger implementation
// =============================================================================

// Bill is the in-memory Ledger used for every phone line.
type Bill struct {
	ID            BillID
	Month         BillingMonth
	plan          PlanTag
	fixedCost     Amount
	freeMinutes   int
	billedMinutes int
	rate          Amount
}

// NewBill returns an empty bill for the given month.
func NewBill(month BillingMonth) *Bill {
	return &Bill{
		ID:        BillID(uuid.NewString()),
		Month:     month,
		fixedCost: NewAmount(0, UnitDollars),
		rate:      NewAmount(0, UnitDollars),
	}
}

// Compile-time check that Bill implements Ledger
var _ Ledger = (*Bill)(nil)

func (b *Bill) AddFixedCost(amount Amount) { b.fixedCost = b.fixedCost.Add(amount) }

func (b *Bill) SetRates(plan PlanTag, perMinute Amount) {
	b.plan = plan
	b.rate = perMinute
}

func (b *Bill) AddFreeMinutes(n int) { b.SetFreeMinutes(b.freeMinutes + n) }

func (b *Bill) AddBilledMinutes(n int) {
	if n > 0 {
		b.billedMinutes += n
	}
}

func (b *Bill) FreeMinutes() int { return b.freeMinutes }

func (b *Bill) SetFreeMinutes(n int) {
	if n < 0 {
		n = 0
	}
	b.freeMinutes = n
}

func (b *Bill) Cost() Amount {
	return b.fixedCost.Add(b.rate.Mul(decimal.NewFromInt(int64(b.billedMinutes))))
}

func (b *Bill) Plan() PlanTag       { return b.plan }
func (b *Bill) FixedCost() Amount   { return b.fixedCost }
func (b *Bill) BilledMinutes() int  { return b.billedMinutes }
func (b *Bill) Rate() Amount        { return b.rate }

// Summary is a read-only view of a bill for reporting.
type Summary struct {
	BillID        BillID
	Month         BillingMonth
	Plan          PlanTag
	FixedCost     Amount
	FreeMinutes   int
	BilledMinutes int
	Rate          Amount
	Total         Amount
}

// Summary captures the bill's current state.
func (b *Bill) Summary() Summary {
	return Summary{
		BillID:        b.ID,
		Month:         b.Month,
		Plan:          b.plan,
		FixedCost:     b.fixedCost,
		FreeMinutes:   b.freeMinutes,
		BilledMinutes: b.billedMinutes,
		Rate:          b.rate,
		Total:         b.Cost(),
	}
}
