package contract

import (
	"github.com/warp/phone-billing/calls"
	"github.com/warp/phone-billing/generic"
)

// Prepaid runs on credit paid in advance.
//
// Credit starts at the deposit. Each month the credit left from the previous
// bill is carried into the new bill as a negative fixed cost; if it is below
// the top-up threshold the line is recharged first. Calls draw the credit
// down immediately, and are also recorded as billed minutes so the bill
// reports usage.
type Prepaid struct {
	base
	rates  Rates
	credit generic.Amount
}

// NewPrepaid creates an active prepaid contract holding deposit as credit.
func NewPrepaid(start generic.TimePoint, deposit generic.Amount, opts ...Option) *Prepaid {
	o := buildOptions(opts)
	return &Prepaid{
		base:   newBase(generic.PlanPrepaid, start),
		rates:  o.rates,
		credit: deposit,
	}
}

var _ Contract = (*Prepaid)(nil)

// Credit returns the customer's remaining credit. Negative means the
// customer has used more than they paid for.
func (c *Prepaid) Credit() generic.Amount { return c.credit }

// Balance is the credit with the ledger's sign: negative while the customer
// holds credit.
func (c *Prepaid) Balance() generic.Amount { return c.credit.Neg() }

func (c *Prepaid) NewMonth(_ generic.BillingMonth, bill generic.Ledger) error {
	if err := c.requireActive("new month"); err != nil {
		return err
	}
	if c.bill != nil {
		c.credit = c.bill.Cost().Neg()
	}
	c.bill = bill
	bill.SetRates(generic.PlanPrepaid, c.rates.PrepaidPerMinute)
	if c.credit.LessThan(c.rates.PrepaidTopUpThreshold) {
		c.credit = c.credit.Add(c.rates.PrepaidTopUp)
	}
	bill.AddFixedCost(c.credit.Neg())
	return nil
}

func (c *Prepaid) BillCall(call *calls.Call) error {
	if err := c.requireBill("bill call"); err != nil {
		return err
	}
	minutes := call.BillableMinutes()
	c.credit = c.credit.Sub(c.rates.PrepaidPerMinute.MulInt(minutes))
	c.bill.AddBilledMinutes(minutes)
	return nil
}

// Cancel refunds any positive credit and zeroes it.
func (c *Prepaid) Cancel() (Settlement, error) {
	if err := c.requireActive("cancel"); err != nil {
		return Settlement{}, err
	}
	c.cancel()
	refund := c.credit.Max(c.credit.Zero())
	c.credit = c.credit.Zero()
	return Settlement{Plan: c.plan, Amount: refund.Neg()}, nil
}
