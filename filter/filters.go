package filter

import (
	"strconv"
	"strings"

	"github.com/warp/phone-billing/calls"
	"github.com/warp/phone-billing/generic"
)

// =============================================================================
// RESET
// =============================================================================

// Reset discards every previous filter and rebuilds the full call list.
type Reset struct{}

// Apply ignores data and control and returns every customer's outgoing
// calls. Only outgoing calls are taken so a call between two customers is
// not counted twice.
func (Reset) Apply(customers []Customer, _ []*calls.Call, _ string) []*calls.Call {
	var result []*calls.Call
	for _, c := range customers {
		result = append(result, c.OutgoingCalls()...)
	}
	return result
}

func (Reset) String() string {
	return "Reset all of the filters applied so far, if any"
}

// =============================================================================
// CUSTOMER
// =============================================================================

// CustomerFilter keeps calls made or received by one customer.
type CustomerFilter struct{}

// Apply expects a four-digit customer id. Unknown ids leave data unchanged.
func (CustomerFilter) Apply(customers []Customer, data []*calls.Call, control string) []*calls.Call {
	if len(control) != 4 || !isDigits(control) {
		return data
	}
	id, err := strconv.Atoi(control)
	if err != nil {
		return data
	}

	var target Customer
	for _, c := range customers {
		if c.ID() == generic.CustomerID(id) {
			target = c
			break
		}
	}
	if target == nil {
		return data
	}

	numbers := make(map[generic.PhoneNumber]bool)
	for _, n := range target.PhoneNumbers() {
		numbers[n] = true
	}
	return keep(data, func(c *calls.Call) bool {
		return numbers[c.Source] || numbers[c.Destination]
	})
}

func (CustomerFilter) String() string {
	return "Filter events based on customer ID"
}

// =============================================================================
// DURATION
// =============================================================================

// Duration keeps calls strictly shorter ("L") or longer ("G") than a
// number of seconds.
type Duration struct{}

func (Duration) Apply(_ []Customer, data []*calls.Call, control string) []*calls.Call {
	if len(control) < 2 || !isDigits(control[1:]) {
		return data
	}
	threshold, err := strconv.Atoi(control[1:])
	if err != nil {
		return data
	}

	switch control[0] {
	case 'L':
		return keep(data, func(c *calls.Call) bool { return c.Duration < threshold })
	case 'G':
		return keep(data, func(c *calls.Call) bool { return c.Duration > threshold })
	}
	return data
}

func (Duration) String() string {
	return "Filter calls based on duration; " +
		"L### returns calls less than specified length, G### for greater"
}

// =============================================================================
// LOCATION
// =============================================================================

// Map bounds every rectangle corner must lie within.
const (
	MapMinLongitude = -79.697878
	MapMaxLongitude = -79.196382
	MapMinLatitude  = 43.576959
	MapMaxLatitude  = 43.799568
)

// Rect is an axis-aligned area; edges are inside.
type Rect struct {
	Lower calls.Location
	Upper calls.Location
}

// Contains reports whether loc lies in r, boundaries included.
func (r Rect) Contains(loc calls.Location) bool {
	return r.Lower.Longitude <= loc.Longitude && loc.Longitude <= r.Upper.Longitude &&
		r.Lower.Latitude <= loc.Latitude && loc.Latitude <= r.Upper.Latitude
}

// ParseRect parses "lowerLong, lowerLat, upperLong, upperLat". It fails if
// any token is not a plain decimal number, a corner lies off the map, or the
// lower corner exceeds the upper one on either axis.
func ParseRect(control string) (Rect, bool) {
	tokens := strings.Split(control, ",")
	if len(tokens) != 4 {
		return Rect{}, false
	}
	var v [4]float64
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if !isCoordinate(tok) {
			return Rect{}, false
		}
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return Rect{}, false
		}
		v[i] = f
	}

	r := Rect{
		Lower: calls.Location{Longitude: v[0], Latitude: v[1]},
		Upper: calls.Location{Longitude: v[2], Latitude: v[3]},
	}
	if !onMap(r.Lower) || !onMap(r.Upper) {
		return Rect{}, false
	}
	if r.Lower.Longitude > r.Upper.Longitude || r.Lower.Latitude > r.Upper.Latitude {
		return Rect{}, false
	}
	return r, true
}

// isCoordinate accepts an optional sign followed by digits with at most one
// decimal point, e.g. "-79.6", "43", ".5".
func isCoordinate(s string) bool {
	if s != "" && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		s = s[:dot] + s[dot+1:]
	}
	return isDigits(s)
}

func onMap(loc calls.Location) bool {
	return MapMinLongitude <= loc.Longitude && loc.Longitude <= MapMaxLongitude &&
		MapMinLatitude <= loc.Latitude && loc.Latitude <= MapMaxLatitude
}

// Location keeps calls whose source or destination lies in a rectangle.
type Location struct{}

func (Location) Apply(_ []Customer, data []*calls.Call, control string) []*calls.Call {
	r, ok := ParseRect(control)
	if !ok {
		return data
	}
	return keep(data, func(c *calls.Call) bool {
		return r.Contains(c.SourceLoc) || r.Contains(c.DestinationLoc)
	})
}

func (Location) String() string {
	return "Filter calls made or received in a given rectangular area. " +
		`Format: "lowerLong, lowerLat, upperLong, upperLat" (e.g., -79.6, 43.6, -79.3, 43.7)`
}
