/*
Package filter narrows a call log with user-supplied control strings.

PURPOSE:
  Each Filter is one stateless predicate parameterised by free text typed
  by a user: a customer id, a duration bound, a map rectangle. Filters are
  chained by the caller into a Pipeline, each step consuming the previous
  step's output.

CONTRACT (every filter):
  1. Never mutate the customers or the call slice passed in.
  2. Retained calls keep their relative order.
  3. An invalid or unrecognised control string returns the input slice
     unchanged. Filters never panic and never return errors.
  4. Syntax is validated in full before any number is parsed.

CONTROL STRINGS:
  Reset:    ignored
  Customer: exactly four digits, e.g. "1234"
  Duration: "L" or "G" followed by seconds, e.g. "L60", "G300"
  Location: "lowerLong, lowerLat, upperLong, upperLat",
            e.g. "-79.6, 43.6, -79.3, 43.7"

EXAMPLE:
  result := filter.Pipeline{
      {Filter: filter.Duration{}, Control: "G60"},
      {Filter: filter.CustomerFilter{}, Control: "1234"},
  }.Run(customers, all)
*/
package filter

import (
	"github.com/warp/phone-billing/calls"
	"github.com/warp/phone-billing/generic"
)

// =============================================================================
// INTERFACES
// =============================================================================

// Customer is what filters need to know about a customer.
type Customer interface {
	ID() generic.CustomerID
	PhoneNumbers() []generic.PhoneNumber
	// OutgoingCalls returns the calls made from the customer's lines,
	// in the order they were made.
	OutgoingCalls() []*calls.Call
}

// Filter is one narrowing step over a call list.
type Filter interface {
	// Apply returns the calls of data matching control, or data itself if
	// control is invalid.
	Apply(customers []Customer, data []*calls.Call, control string) []*calls.Call

	// String describes the filter for menus.
	String() string
}

// =============================================================================
// PIPELINE
// =============================================================================

// Step pairs a filter with the control string it runs with.
type Step struct {
	Filter  Filter
	Control string
}

// Pipeline applies its steps in order.
type Pipeline []Step

// Run threads data through every step and returns the final call list.
func (p Pipeline) Run(customers []Customer, data []*calls.Call) []*calls.Call {
	for _, step := range p {
		data = step.Filter.Apply(customers, data, step.Control)
	}
	return data
}

// =============================================================================
// MENU
// =============================================================================

// Entry is a filter with the key used to select it.
type Entry struct {
	Key    string
	Filter Filter
}

// Menu lists the available filters in display order.
func Menu() []Entry {
	return []Entry{
		{Key: "reset", Filter: Reset{}},
		{Key: "customer", Filter: CustomerFilter{}},
		{Key: "duration", Filter: Duration{}},
		{Key: "location", Filter: Location{}},
	}
}

// ByKey finds a menu entry by its key.
func ByKey(key string) (Filter, bool) {
	for _, e := range Menu() {
		if e.Key == key {
			return e.Filter, true
		}
	}
	return nil, false
}

// =============================================================================
// HELPERS
// =============================================================================

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func keep(data []*calls.Call, match func(*calls.Call) bool) []*calls.Call {
	result := make([]*calls.Call, 0, len(data))
	for _, c := range data {
		if match(c) {
			result = append(result, c)
		}
	}
	return result
}
