package contract

import "github.com/warp/phone-billing/generic"

// =============================================================================
// RATES - Prices of every plan
// =============================================================================

// Rates holds the prices all contracts are configured from. DefaultRates
// returns the standard price list; config.Plans can override any field.
type Rates struct {
	MonthToMonthFee       generic.Amount
	MonthToMonthPerMinute generic.Amount

	TermFee         generic.Amount
	TermPerMinute   generic.Amount
	TermDeposit     generic.Amount
	TermFreeMinutes int

	PrepaidPerMinute generic.Amount
	// PrepaidTopUp is recharged when credit at the start of a month is
	// below PrepaidTopUpThreshold.
	PrepaidTopUp          generic.Amount
	PrepaidTopUpThreshold generic.Amount
}

// DefaultRates returns the standard price list.
func DefaultRates() Rates {
	return Rates{
		MonthToMonthFee:       generic.MustParseAmount("50.00", generic.UnitDollars),
		MonthToMonthPerMinute: generic.MustParseAmount("0.05", generic.UnitDollars),

		TermFee:         generic.MustParseAmount("20.00", generic.UnitDollars),
		TermPerMinute:   generic.MustParseAmount("0.1", generic.UnitDollars),
		TermDeposit:     generic.MustParseAmount("300.00", generic.UnitDollars),
		TermFreeMinutes: 100,

		PrepaidPerMinute:      generic.MustParseAmount("0.025", generic.UnitDollars),
		PrepaidTopUp:          generic.MustParseAmount("25.00", generic.UnitDollars),
		PrepaidTopUpThreshold: generic.MustParseAmount("10.00", generic.UnitDollars),
	}
}

// =============================================================================
// OPTIONS
// =============================================================================

type options struct {
	rates Rates
	clock generic.Clock
}

// Option customises a contract at construction.
type Option func(*options)

// WithRates overrides the default price list.
func WithRates(r Rates) Option {
	return func(o *options) { o.rates = r }
}

// WithClock sets the clock Term uses to decide whether its term has ended.
func WithClock(c generic.Clock) Option {
	return func(o *options) { o.clock = c }
}

func buildOptions(opts []Option) options {
	o := options{rates: DefaultRates(), clock: generic.SystemClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
