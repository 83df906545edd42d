// Package calls holds the call-log data model shared by contracts, filters
// and the customer roster, plus the loader for call datasets.
package calls

import (
	"time"

	"github.com/warp/phone-billing/generic"
)

// =============================================================================
// LOCATION
// =============================================================================

// Location is a (longitude, latitude) pair in decimal degrees.
type Location struct {
	Longitude float64
	Latitude  float64
}

// =============================================================================
// CALL - One phone call between two numbers
// =============================================================================

// Call is immutable once loaded. The same *Call is shared by the caller's
// outgoing history and the receiver's incoming history.
type Call struct {
	Source         generic.PhoneNumber
	Destination    generic.PhoneNumber
	Time           time.Time
	Duration       int // seconds
	SourceLoc      Location
	DestinationLoc Location
}

// BillableMinutes rounds the duration up to whole minutes:
// 1s → 1, 60s → 1, 61s → 2.
func (c *Call) BillableMinutes() int {
	if c.Duration <= 0 {
		return 0
	}
	return (c.Duration + 59) / 60
}

// Month returns the billing month the call falls in.
func (c *Call) Month() generic.BillingMonth {
	return generic.MonthOf(c.Time)
}
