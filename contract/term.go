package contract

import (
	"github.com/warp/phone-billing/calls"
	"github.com/warp/phone-billing/generic"
)

// Term is a fixed-length contract with a monthly free-minute allowance.
//
// The deposit is charged once, in the bill of the month the contract
// started. Free minutes are granted fresh every month; unused minutes do
// not carry over. Cancelling on or after the end date returns the deposit
// minus one monthly fee; cancelling earlier forfeits it.
type Term struct {
	base
	end   generic.TimePoint
	rates Rates
	clock generic.Clock
}

// NewTerm creates an active term contract running from start to end.
func NewTerm(start, end generic.TimePoint, opts ...Option) *Term {
	o := buildOptions(opts)
	return &Term{
		base:  newBase(generic.PlanTerm, start),
		end:   end,
		rates: o.rates,
		clock: o.clock,
	}
}

var _ Contract = (*Term)(nil)

// End returns the last day of the term.
func (c *Term) End() generic.TimePoint { return c.end }

func (c *Term) NewMonth(month generic.BillingMonth, bill generic.Ledger) error {
	if err := c.requireActive("new month"); err != nil {
		return err
	}
	c.bill = bill
	bill.AddFixedCost(c.rates.TermFee)
	bill.SetRates(generic.PlanTerm, c.rates.TermPerMinute)
	bill.AddFreeMinutes(c.rates.TermFreeMinutes)
	if month == c.start.BillingMonth() {
		bill.AddFixedCost(c.rates.TermDeposit)
	}
	return nil
}

// BillCall consumes free minutes first; only the shortfall is billed.
func (c *Term) BillCall(call *calls.Call) error {
	if err := c.requireBill("bill call"); err != nil {
		return err
	}
	remaining := c.bill.FreeMinutes() - call.BillableMinutes()
	if remaining >= 0 {
		c.bill.SetFreeMinutes(remaining)
		return nil
	}
	c.bill.SetFreeMinutes(0)
	c.bill.AddBilledMinutes(-remaining)
	return nil
}

// Cancel returns the deposit minus one monthly fee if the term has ended by
// the clock's today, and nothing otherwise.
func (c *Term) Cancel() (Settlement, error) {
	if err := c.requireActive("cancel"); err != nil {
		return Settlement{}, err
	}
	c.cancel()
	settlement := Settlement{Plan: c.plan, Amount: generic.NewAmount(0, generic.UnitDollars)}
	if c.clock.Today().AfterOrEqual(c.end) {
		settlement.Amount = c.rates.TermDeposit.Sub(c.rates.TermFee).Neg()
	}
	return settlement, nil
}
