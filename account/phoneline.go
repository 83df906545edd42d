/*
Package account models customers, their phone lines, and the monthly
billing loop that drives contracts.

PURPOSE:
  A PhoneLine pairs a number with a contract and keeps one bill per month.
  A Customer owns one or more lines. The Roster replays a call history in
  time order: whenever a call falls in a new month, every line opens that
  month's bill, then the call is billed to the caller's line and recorded
  as received on the callee's line.

BILLING RULES:
  - Outgoing calls are billed against the bill of the call's month.
  - Incoming calls are free; they are kept for history only.
  - A line's bill for a month is created once; reopening the same month is
    a no-op.
  - Cancelled lines are skipped when months open.

SEE ALSO:
  - contract/: What each plan charges
  - roster.go: History replay
  - store.go: Lookup interface backing the roster
*/
package account

import (
	"fmt"

	"github.com/warp/phone-billing/calls"
	"github.com/warp/phone-billing/contract"
	"github.com/warp/phone-billing/generic"
)

// =============================================================================
// PHONE LINE
// =============================================================================

// PhoneLine is one number billed under one contract.
type PhoneLine struct {
	Number   generic.PhoneNumber
	Contract contract.Contract

	bills    map[generic.BillingMonth]*generic.Bill
	outgoing []*calls.Call
	incoming []*calls.Call
}

func NewPhoneLine(number generic.PhoneNumber, c contract.Contract) *PhoneLine {
	return &PhoneLine{
		Number:   number,
		Contract: c,
		bills:    make(map[generic.BillingMonth]*generic.Bill),
	}
}

// Cancelled reports whether the line's contract has been cancelled.
func (l *PhoneLine) Cancelled() bool {
	return l.Contract.State() == contract.StateCancelled
}

// NewMonth opens the bill for month and lets the contract configure it.
func (l *PhoneLine) NewMonth(month generic.BillingMonth) error {
	if _, ok := l.bills[month]; ok {
		return nil
	}
	bill := generic.NewBill(month)
	if err := l.Contract.NewMonth(month, bill); err != nil {
		return fmt.Errorf("line %s: %w", l.Number, err)
	}
	l.bills[month] = bill
	return nil
}

// MakeCall records an outgoing call and bills it.
func (l *PhoneLine) MakeCall(call *calls.Call) error {
	if err := l.Contract.BillCall(call); err != nil {
		return fmt.Errorf("line %s: %w", l.Number, err)
	}
	l.outgoing = append(l.outgoing, call)
	return nil
}

// ReceiveCall records an incoming call. Receiving is free.
func (l *PhoneLine) ReceiveCall(call *calls.Call) {
	l.incoming = append(l.incoming, call)
}

// Cancel cancels the contract and returns its settlement.
func (l *PhoneLine) Cancel() (contract.Settlement, error) {
	s, err := l.Contract.Cancel()
	if err != nil {
		return contract.Settlement{}, fmt.Errorf("line %s: %w", l.Number, err)
	}
	return s, nil
}

// Bill returns the bill for month, if that month was opened.
func (l *PhoneLine) Bill(month generic.BillingMonth) (*generic.Bill, bool) {
	b, ok := l.bills[month]
	return b, ok
}

// Summary reports the bill for month.
func (l *PhoneLine) Summary(month generic.BillingMonth) (generic.Summary, error) {
	b, ok := l.bills[month]
	if !ok {
		return generic.Summary{}, fmt.Errorf("line %s %s: %w", l.Number, month, generic.ErrBillNotFound)
	}
	return b.Summary(), nil
}

func (l *PhoneLine) OutgoingCalls() []*calls.Call { return l.outgoing }
func (l *PhoneLine) IncomingCalls() []*calls.Call { return l.incoming }
