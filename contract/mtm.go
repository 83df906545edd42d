package contract

import (
	"github.com/warp/phone-billing/calls"
	"github.com/warp/phone-billing/generic"
)

// MonthToMonth charges a flat monthly fee plus every minute at the rate.
// It can be cancelled at any time; the customer owes the current bill.
type MonthToMonth struct {
	base
	rates Rates
}

// NewMonthToMonth creates an active month-to-month contract.
func NewMonthToMonth(start generic.TimePoint, opts ...Option) *MonthToMonth {
	o := buildOptions(opts)
	return &MonthToMonth{base: newBase(generic.PlanMonthToMonth, start), rates: o.rates}
}

var _ Contract = (*MonthToMonth)(nil)

func (c *MonthToMonth) NewMonth(_ generic.BillingMonth, bill generic.Ledger) error {
	if err := c.requireActive("new month"); err != nil {
		return err
	}
	c.bill = bill
	bill.AddFixedCost(c.rates.MonthToMonthFee)
	bill.SetRates(generic.PlanMonthToMonth, c.rates.MonthToMonthPerMinute)
	return nil
}

func (c *MonthToMonth) BillCall(call *calls.Call) error {
	return c.billCall(call)
}

// Cancel settles for the current month's bill.
func (c *MonthToMonth) Cancel() (Settlement, error) {
	if err := c.requireBill("cancel"); err != nil {
		return Settlement{}, err
	}
	c.cancel()
	return Settlement{Plan: c.plan, Amount: c.bill.Cost()}, nil
}
