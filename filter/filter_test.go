package filter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/phone-billing/calls"
	"github.com/warp/phone-billing/filter"
	"github.com/warp/phone-billing/generic"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

type stubCustomer struct {
	id       generic.CustomerID
	numbers  []generic.PhoneNumber
	outgoing []*calls.Call
}

func (s stubCustomer) ID() generic.CustomerID              { return s.id }
func (s stubCustomer) PhoneNumbers() []generic.PhoneNumber { return s.numbers }
func (s stubCustomer) OutgoingCalls() []*calls.Call        { return s.outgoing }

var (
	downtown = calls.Location{Longitude: -79.38, Latitude: 43.65}
	airport  = calls.Location{Longitude: -79.61, Latitude: 43.68}
	corner   = calls.Location{Longitude: -79.6, Latitude: 43.6}
	east     = calls.Location{Longitude: -79.25, Latitude: 43.75}
)

func call(src, dst string, seconds int, srcLoc, dstLoc calls.Location) *calls.Call {
	return &calls.Call{
		Source:         generic.PhoneNumber(src),
		Destination:    generic.PhoneNumber(dst),
		Time:           time.Date(2018, time.January, 1, 0, 0, 0, 0, time.UTC),
		Duration:       seconds,
		SourceLoc:      srcLoc,
		DestinationLoc: dstLoc,
	}
}

// fixture: customer 1001 owns 100-1000, customer 1002 owns 200-2000 and 200-2001,
// customer 1003 owns 300-3000 and never calls.
func fixture() ([]filter.Customer, []*calls.Call) {
	c1 := call("100-1000", "200-2000", 30, downtown, airport)
	c2 := call("200-2000", "100-1000", 600, airport, downtown)
	c3 := call("200-2001", "300-3000", 61, corner, east)
	c4 := call("100-1000", "300-3000", 120, east, east)
	c5 := call("200-2000", "200-2001", 59, downtown, downtown)

	customers := []filter.Customer{
		stubCustomer{id: 1001, numbers: []generic.PhoneNumber{"100-1000"}, outgoing: []*calls.Call{c1, c4}},
		stubCustomer{id: 1002, numbers: []generic.PhoneNumber{"200-2000", "200-2001"}, outgoing: []*calls.Call{c2, c3, c5}},
		stubCustomer{id: 1003, numbers: []generic.PhoneNumber{"300-3000"}},
	}
	return customers, []*calls.Call{c1, c2, c3, c4, c5}
}

func snapshot(data []*calls.Call) []*calls.Call {
	return append([]*calls.Call(nil), data...)
}

// =============================================================================
// RESET
// =============================================================================

func TestReset_RebuildsFromOutgoingCalls(t *testing.T) {
	customers, all := fixture()

	got := filter.Reset{}.Apply(customers, all[:1], "anything")

	require.Len(t, got, 5, "every call exactly once")
	assert.ElementsMatch(t, all, got)
}

// =============================================================================
// CUSTOMER
// =============================================================================

func TestCustomer_KeepsCallsOnAnyOfTheirLines(t *testing.T) {
	customers, all := fixture()

	got := filter.CustomerFilter{}.Apply(customers, all, "1002")

	assert.Equal(t, []*calls.Call{all[0], all[1], all[2], all[4]}, got)
}

func TestCustomer_ReceivedCallsIncluded(t *testing.T) {
	customers, all := fixture()

	got := filter.CustomerFilter{}.Apply(customers, all, "1003")

	assert.Equal(t, []*calls.Call{all[2], all[3]}, got)
}

func TestCustomer_InvalidControlReturnsInput(t *testing.T) {
	customers, all := fixture()
	for _, control := range []string{"", "100", "10011", "10a1", " 1001", "-100", "१००१", "9999"} {
		got := filter.CustomerFilter{}.Apply(customers, all, control)
		assert.Equal(t, all, got, "control %q", control)
	}
}

// =============================================================================
// DURATION
// =============================================================================

func TestDuration_LessThanIsStrict(t *testing.T) {
	_, all := fixture()

	got := filter.Duration{}.Apply(nil, all, "L61")

	assert.Equal(t, []*calls.Call{all[0], all[4]}, got)
}

func TestDuration_GreaterThanIsStrict(t *testing.T) {
	_, all := fixture()

	got := filter.Duration{}.Apply(nil, all, "G120")

	assert.Equal(t, []*calls.Call{all[1]}, got)
}

func TestDuration_ZeroThreshold(t *testing.T) {
	_, all := fixture()

	assert.Empty(t, filter.Duration{}.Apply(nil, all, "L0"))
	assert.Equal(t, all, filter.Duration{}.Apply(nil, all, "G0"))
}

func TestDuration_InvalidControlReturnsInput(t *testing.T) {
	_, all := fixture()
	controls := []string{"", "L", "G", "X60", "l60", "L-5", "L6.0", "L 60", "60", "G99999999999999999999999"}
	for _, control := range controls {
		got := filter.Duration{}.Apply(nil, all, control)
		assert.Equal(t, all, got, "control %q", control)
	}
}

// =============================================================================
// LOCATION
// =============================================================================

func TestLocation_BoundaryIsInclusive(t *testing.T) {
	_, all := fixture()

	got := filter.Location{}.Apply(nil, all, "-79.6, 43.6, -79.3, 43.7")

	// all[2] starts exactly at the lower-left corner
	assert.Contains(t, got, all[2])
	assert.Equal(t, []*calls.Call{all[0], all[1], all[2], all[4]}, got)
}

func TestLocation_SourceOrDestinationMatches(t *testing.T) {
	_, all := fixture()

	// only the east area: all[2] ends there, all[3] starts and ends there
	got := filter.Location{}.Apply(nil, all, "-79.3,43.7,-79.2,43.79")

	assert.Equal(t, []*calls.Call{all[2], all[3]}, got)
}

func TestLocation_InvalidControlReturnsInput(t *testing.T) {
	_, all := fixture()
	controls := []string{
		"",
		"-79.6, 43.6, -79.3",                // three tokens
		"-79.6, 43.6, -79.3, 43.7, 1",       // five tokens
		"-79.6, 43.6, -79.3, abc",           // not a number
		"--79.6, 43.6, -79.3, 43.7",         // double sign
		"-79.6, 43.6.1, -79.3, 43.7",        // two decimal points
		"-79.6, 43.6, -79.3, 4e1",           // exponent
		"-80.0, 43.6, -79.3, 43.7",          // off the map (long)
		"-79.6, 43.6, -79.3, 44.0",          // off the map (lat)
		"-79.3, 43.6, -79.6, 43.7",          // inverted longitude
		"-79.6, 43.7, -79.3, 43.6",          // inverted latitude
		"-79.6; 43.6; -79.3; 43.7",          // wrong separator
		"-79.6, 43.6, -79.3, 43.7 extra",    // trailing text
		", , , ",                             // empty tokens
		"NaN, 43.6, -79.3, 43.7",            // not a plain decimal
	}
	for _, control := range controls {
		got := filter.Location{}.Apply(nil, all, control)
		assert.Equal(t, all, got, "control %q", control)
	}
}

func TestParseRect(t *testing.T) {
	r, ok := filter.ParseRect(" -79.6 ,43.6,-79.3,  43.7 ")
	require.True(t, ok)
	assert.Equal(t, calls.Location{Longitude: -79.6, Latitude: 43.6}, r.Lower)
	assert.Equal(t, calls.Location{Longitude: -79.3, Latitude: 43.7}, r.Upper)
	assert.True(t, r.Contains(corner))
	assert.False(t, r.Contains(east))

	// a degenerate rectangle (a single point) is valid
	_, ok = filter.ParseRect("-79.6, 43.6, -79.6, 43.6")
	assert.True(t, ok)
}

// =============================================================================
// CROSS-FILTER PROPERTIES
// =============================================================================

func TestFilters_DoNotMutateInputs(t *testing.T) {
	customers, all := fixture()
	before := snapshot(all)

	for _, e := range filter.Menu() {
		for _, control := range []string{"1002", "L100", "G100", "-79.6, 43.6, -79.3, 43.7", "junk"} {
			_ = e.Filter.Apply(customers, all, control)
			require.Equal(t, before, all, "%s %q mutated its input", e.Key, control)
		}
	}
}

func TestFilters_InvalidInputIsIdempotent(t *testing.T) {
	customers, all := fixture()
	for _, e := range filter.Menu()[1:] {
		once := e.Filter.Apply(customers, all, "not valid")
		twice := e.Filter.Apply(customers, once, "not valid")
		assert.Equal(t, all, once, e.Key)
		assert.Equal(t, all, twice, e.Key)
	}
}

func TestPipeline_PreservesRelativeOrder(t *testing.T) {
	customers, all := fixture()

	got := filter.Pipeline{
		{Filter: filter.Duration{}, Control: "L601"},
		{Filter: filter.CustomerFilter{}, Control: "1001"},
	}.Run(customers, all)

	assert.Equal(t, []*calls.Call{all[0], all[1], all[3]}, got)
	assertSubsequence(t, all, got)
}

func TestPipeline_InvalidStepIsSkipped(t *testing.T) {
	customers, all := fixture()

	got := filter.Pipeline{
		{Filter: filter.Duration{}, Control: "G60"},
		{Filter: filter.Location{}, Control: "nowhere"},
		{Filter: filter.CustomerFilter{}, Control: "1003"},
	}.Run(customers, all)

	assert.Equal(t, []*calls.Call{all[2], all[3]}, got)
}

func TestPipeline_ResetStartsOver(t *testing.T) {
	customers, all := fixture()

	got := filter.Pipeline{
		{Filter: filter.CustomerFilter{}, Control: "1003"},
		{Filter: filter.Reset{}},
	}.Run(customers, all)

	assert.ElementsMatch(t, all, got)
}

func TestPipeline_EmptyReturnsInput(t *testing.T) {
	customers, all := fixture()
	assert.Equal(t, all, filter.Pipeline{}.Run(customers, all))
}

func TestMenu(t *testing.T) {
	menu := filter.Menu()
	require.Len(t, menu, 4)
	for _, e := range menu {
		assert.NotEmpty(t, e.Filter.String(), e.Key)
		f, ok := filter.ByKey(e.Key)
		require.True(t, ok)
		assert.Equal(t, e.Filter, f)
	}
	_, ok := filter.ByKey("sms")
	assert.False(t, ok)
}

func assertSubsequence(t *testing.T, whole, part []*calls.Call) {
	t.Helper()
	i := 0
	for _, c := range whole {
		if i < len(part) && part[i] == c {
			i++
		}
	}
	assert.Equal(t, len(part), i, "result is not an ordered subsequence of the input")
}
