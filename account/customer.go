package account

import (
	"fmt"

	"github.com/warp/phone-billing/calls"
	"github.com/warp/phone-billing/contract"
	"github.com/warp/phone-billing/filter"
	"github.com/warp/phone-billing/generic"
)

// =============================================================================
// CUSTOMER
// =============================================================================

// Customer owns one or more phone lines.
type Customer struct {
	id    generic.CustomerID
	lines []*PhoneLine
}

func NewCustomer(id generic.CustomerID, lines ...*PhoneLine) *Customer {
	return &Customer{id: id, lines: lines}
}

// Compile-time check that Customer can be filtered on.
var _ filter.Customer = (*Customer)(nil)

func (c *Customer) ID() generic.CustomerID { return c.id }
func (c *Customer) Lines() []*PhoneLine     { return c.lines }

// AddLine attaches another line to the customer.
func (c *Customer) AddLine(line *PhoneLine) { c.lines = append(c.lines, line) }

// PhoneNumbers returns the numbers of every line, in line order.
func (c *Customer) PhoneNumbers() []generic.PhoneNumber {
	numbers := make([]generic.PhoneNumber, len(c.lines))
	for i, l := range c.lines {
		numbers[i] = l.Number
	}
	return numbers
}

// Line finds one of the customer's lines by number.
func (c *Customer) Line(number generic.PhoneNumber) (*PhoneLine, bool) {
	for _, l := range c.lines {
		if l.Number == number {
			return l, true
		}
	}
	return nil, false
}

// OutgoingCalls returns every call made from the customer's lines, line by
// line in the order each line made them.
func (c *Customer) OutgoingCalls() []*calls.Call {
	var result []*calls.Call
	for _, l := range c.lines {
		result = append(result, l.OutgoingCalls()...)
	}
	return result
}

// IncomingCalls returns every call received on the customer's lines.
func (c *Customer) IncomingCalls() []*calls.Call {
	var result []*calls.Call
	for _, l := range c.lines {
		result = append(result, l.IncomingCalls()...)
	}
	return result
}

// History returns the outgoing and incoming calls.
func (c *Customer) History() (outgoing, incoming []*calls.Call) {
	return c.OutgoingCalls(), c.IncomingCalls()
}

// NewMonth opens month on every line that is still active.
func (c *Customer) NewMonth(month generic.BillingMonth) error {
	for _, l := range c.lines {
		if l.Cancelled() {
			continue
		}
		if err := l.NewMonth(month); err != nil {
			return err
		}
	}
	return nil
}

// MakeCall bills call to the line it was made from.
func (c *Customer) MakeCall(call *calls.Call) error {
	l, ok := c.Line(call.Source)
	if !ok {
		return fmt.Errorf("customer %d: %s: %w", c.id, call.Source, generic.ErrLineNotFound)
	}
	return l.MakeCall(call)
}

// ReceiveCall records call on the line it was made to.
func (c *Customer) ReceiveCall(call *calls.Call) error {
	l, ok := c.Line(call.Destination)
	if !ok {
		return fmt.Errorf("customer %d: %s: %w", c.id, call.Destination, generic.ErrLineNotFound)
	}
	l.ReceiveCall(call)
	return nil
}

// CancelLine cancels the contract of one line.
func (c *Customer) CancelLine(number generic.PhoneNumber) (contract.Settlement, error) {
	l, ok := c.Line(number)
	if !ok {
		return contract.Settlement{}, fmt.Errorf("customer %d: %s: %w", c.id, number, generic.ErrLineNotFound)
	}
	return l.Cancel()
}

// LineBill is one line's bill for a month.
type LineBill struct {
	Number  generic.PhoneNumber
	Summary generic.Summary
}

// BillSummaries returns the bill of every line that has one for month,
// and the customer's total for that month.
func (c *Customer) BillSummaries(month generic.BillingMonth) ([]LineBill, generic.Amount) {
	total := generic.NewAmount(0, generic.UnitDollars)
	var result []LineBill
	for _, l := range c.lines {
		s, err := l.Summary(month)
		if err != nil {
			continue
		}
		result = append(result, LineBill{Number: l.Number, Summary: s})
		total = total.Add(s.Total)
	}
	return result, total
}
