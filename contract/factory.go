/*
factory.go - JSON to Contract conversion

PURPOSE:
  Builds contracts from JSON definitions or from the short plan names used
  in datasets, so lines can be provisioned without code changes.

JSON SCHEMA:
  {"plan": "mtm",     "start": "2017-12-25"}
  {"plan": "term",    "start": "2017-12-25", "end": "2019-06-25"}
  {"plan": "prepaid", "start": "2017-12-25", "deposit": 100}

  "plan" accepts the dataset names (mtm, term, prepaid) and the bill plan
  tags (MTM, TERM, PREPAID), case-insensitively.

DATASET DEFAULTS:
  Lines in a dataset only name their plan. ForPlan fills in the standard
  dates: start 2017-12-25, term end 2019-06-25, prepaid deposit $100.

USAGE:
  f := contract.NewFactory(contract.DefaultRates(), generic.SystemClock{})
  c, err := f.Parse(`{"plan":"term","start":"2018-01-01","end":"2019-01-01"}`)
*/
package contract

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/phone-billing/generic"
)

// Dataset defaults.
var (
	DefaultStart   = generic.NewTimePoint(2017, time.December, 25)
	DefaultTermEnd = generic.NewTimePoint(2019, time.June, 25)
)

const DefaultPrepaidDeposit = 100

// ContractJSON is the JSON representation of a contract.
type ContractJSON struct {
	Plan    string           `json:"plan"`
	Start   string           `json:"start"`
	End     string           `json:"end,omitempty"`
	Deposit *decimal.Decimal `json:"deposit,omitempty"`
}

// Factory creates contracts sharing one price list and clock.
type Factory struct {
	Rates Rates
	Clock generic.Clock
}

func NewFactory(rates Rates, clock generic.Clock) *Factory {
	if clock == nil {
		clock = generic.SystemClock{}
	}
	return &Factory{Rates: rates, Clock: clock}
}

// ParsePlan maps a plan name to its tag.
func ParsePlan(s string) (generic.PlanTag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mtm", "month_to_month", "month-to-month":
		return generic.PlanMonthToMonth, nil
	case "term":
		return generic.PlanTerm, nil
	case "prepaid":
		return generic.PlanPrepaid, nil
	}
	return "", fmt.Errorf("%w: %q", generic.ErrUnknownPlan, s)
}

// Parse decodes a JSON contract definition.
func (f *Factory) Parse(jsonStr string) (Contract, error) {
	var cj ContractJSON
	if err := json.Unmarshal([]byte(jsonStr), &cj); err != nil {
		return nil, fmt.Errorf("failed to parse contract JSON: %w", err)
	}
	return f.FromJSON(cj)
}

// FromJSON builds a contract from its decoded definition. Missing dates and
// deposits fall back to the dataset defaults.
func (f *Factory) FromJSON(cj ContractJSON) (Contract, error) {
	plan, err := ParsePlan(cj.Plan)
	if err != nil {
		return nil, err
	}
	start, err := parseDateOr(cj.Start, DefaultStart)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	opts := f.options()

	switch plan {
	case generic.PlanMonthToMonth:
		return NewMonthToMonth(start, opts...), nil
	case generic.PlanTerm:
		end, err := parseDateOr(cj.End, DefaultTermEnd)
		if err != nil {
			return nil, fmt.Errorf("invalid end date: %w", err)
		}
		if end.Before(start) {
			return nil, fmt.Errorf("term ends %s before it starts %s", end, start)
		}
		return NewTerm(start, end, opts...), nil
	default:
		deposit := generic.NewAmountFromInt(DefaultPrepaidDeposit, generic.UnitDollars)
		if cj.Deposit != nil {
			if cj.Deposit.IsNegative() {
				return nil, fmt.Errorf("prepaid deposit must not be negative")
			}
			deposit = generic.Amount{Value: *cj.Deposit, Unit: generic.UnitDollars}
		}
		return NewPrepaid(start, deposit, opts...), nil
	}
}

// ForPlan builds a contract for a dataset line from its plan name alone.
func (f *Factory) ForPlan(name string) (Contract, error) {
	return f.FromJSON(ContractJSON{Plan: name})
}

func (f *Factory) options() []Option {
	return []Option{WithRates(f.Rates), WithClock(f.Clock)}
}

func parseDateOr(s string, fallback generic.TimePoint) (generic.TimePoint, error) {
	if s == "" {
		return fallback, nil
	}
	return generic.ParseDate(s)
}
