/*
Package contract implements the billing state machine of a phone line.

PURPOSE:
  A Contract decides what a line costs. Every month the caller hands it a
  fresh Ledger (NewMonth), the contract writes the plan's fixed costs, rate
  and free-minute allowance into it, and then every call made that month is
  recorded against it (BillCall). Cancelling returns the final settlement.

PLANS:
  MonthToMonth: flat fee, every minute billed at the rate
  Term:         flat fee, monthly free minutes, one-time deposit in the
                start month, deposit returned (minus one fee) at term end
  Prepaid:      running credit carried month to month, auto top-up when
                credit runs low, leftover credit refunded on cancel

LIFECYCLE:
  Active ──Cancel()──► Cancelled

  Any NewMonth/BillCall/Cancel on a Cancelled contract returns
  generic.ErrContractCancelled. BillCall before the first NewMonth returns
  generic.ErrNoActiveBill. Month ordering is the caller's responsibility:
  months must be opened in increasing order before their calls are billed.

SETTLEMENT SIGN:
  All plans use one convention. Settlement.Amount > 0 means the customer
  owes money, < 0 means the customer is owed money. Owed() and Refund()
  give the unsigned views.

SEE ALSO:
  - rates.go: Plan prices
  - factory.go: JSON contract definitions
  - generic/ledger.go: The Ledger contracts write into
*/
package contract

import (
	"github.com/warp/phone-billing/calls"
	"github.com/warp/phone-billing/generic"
)

// =============================================================================
// CONTRACT INTERFACE
// =============================================================================

// Contract is implemented by MonthToMonth, Term and Prepaid.
type Contract interface {
	// Plan returns the plan tag written into every bill.
	Plan() generic.PlanTag

	// Start returns the date the contract began.
	Start() generic.TimePoint

	// State reports whether the contract can still be billed.
	State() State

	// NewMonth installs bill as the ledger for month and configures it.
	NewMonth(month generic.BillingMonth, bill generic.Ledger) error

	// BillCall records one call against the current month's ledger.
	BillCall(call *calls.Call) error

	// Cancel closes the contract and returns the final settlement.
	Cancel() (Settlement, error)
}

// State is the contract lifecycle state.
type State string

const (
	StateActive    State = "active"
	StateCancelled State = "cancelled"
)

// =============================================================================
// SETTLEMENT
// =============================================================================

// Settlement is the signed result of cancelling a contract.
type Settlement struct {
	Plan   generic.PlanTag
	Amount generic.Amount // > 0 customer owes, < 0 customer is owed
}

// Owed returns what the customer still has to pay, or zero.
func (s Settlement) Owed() generic.Amount {
	return s.Amount.Max(s.Amount.Zero())
}

// Refund returns what is paid back to the customer, or zero.
func (s Settlement) Refund() generic.Amount {
	return s.Amount.Neg().Max(s.Amount.Zero())
}

// =============================================================================
// BASE - State shared by every plan
// =============================================================================

type base struct {
	plan  generic.PlanTag
	start generic.TimePoint
	bill  generic.Ledger
	state State
}

func newBase(plan generic.PlanTag, start generic.TimePoint) base {
	return base{plan: plan, start: start, state: StateActive}
}

func (b *base) Plan() generic.PlanTag    { return b.plan }
func (b *base) Start() generic.TimePoint { return b.start }
func (b *base) State() State             { return b.state }

// Bill returns the ledger of the current month, or nil before the first month.
func (b *base) Bill() generic.Ledger { return b.bill }

func (b *base) stateError(op string, err error) error {
	return &generic.ContractStateError{Plan: b.plan, Operation: op, Err: err}
}

// requireActive fails once the contract has been cancelled.
func (b *base) requireActive(op string) error {
	if b.state == StateCancelled {
		return b.stateError(op, generic.ErrContractCancelled)
	}
	return nil
}

// requireBill fails if the contract is cancelled or no month is open.
func (b *base) requireBill(op string) error {
	if err := b.requireActive(op); err != nil {
		return err
	}
	if b.bill == nil {
		return b.stateError(op, generic.ErrNoActiveBill)
	}
	return nil
}

// billCall charges every minute of the call at the plan rate.
func (b *base) billCall(call *calls.Call) error {
	if err := b.requireBill("bill call"); err != nil {
		return err
	}
	b.bill.AddBilledMinutes(call.BillableMinutes())
	return nil
}

func (b *base) cancel() {
	b.state = StateCancelled
}
