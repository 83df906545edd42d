package calls_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/phone-billing/calls"
	"github.com/warp/phone-billing/generic"
)

func TestCall_BillableMinutesRoundsUp(t *testing.T) {
	cases := []struct {
		seconds int
		minutes int
	}{
		{0, 0},
		{1, 1},
		{59, 1},
		{60, 1},
		{61, 2},
		{120, 2},
		{121, 3},
	}
	for _, tc := range cases {
		c := &calls.Call{Duration: tc.seconds}
		assert.Equal(t, tc.minutes, c.BillableMinutes(), "%d seconds", tc.seconds)
	}
}

func TestCall_Month(t *testing.T) {
	c := &calls.Call{Time: time.Date(2018, time.February, 28, 23, 59, 0, 0, time.UTC)}
	assert.Equal(t, generic.NewBillingMonth(2018, time.February), c.Month())
}

const sampleDataset = `{
  "customers": [
    {"id": 1001, "lines": [{"number": "100-1000", "contract": "mtm"}]},
    {"id": 1002, "lines": [{"number": "200-2000", "contract": "term"}, {"number": "200-2001", "contract": "prepaid"}]}
  ],
  "events": [
    {"type": "call", "src_number": "200-2000", "dst_number": "100-1000",
     "time": "2018-01-05 10:00:00", "duration": 90,
     "src_loc": [-79.5, 43.7], "dst_loc": [-79.4, 43.6]},
    {"type": "sms", "src_number": "100-1000", "dst_number": "200-2000",
     "time": "2018-01-02 10:00:00"},
    {"type": "call", "src_number": "100-1000", "dst_number": "200-2001",
     "time": "2018-01-01 08:30:00", "duration": 30,
     "src_loc": [-79.3, 43.65], "dst_loc": [-79.35, 43.66]}
  ]
}`

func TestLoad_DecodesCustomersAndSortsCalls(t *testing.T) {
	ds, err := calls.Load(strings.NewReader(sampleDataset))
	require.NoError(t, err)

	require.Len(t, ds.Customers, 2)
	assert.Equal(t, 1002, ds.Customers[1].ID)
	assert.Equal(t, "prepaid", ds.Customers[1].Lines[1].Contract)

	got := ds.Calls()
	require.Len(t, got, 2, "sms events are skipped")
	assert.Equal(t, generic.PhoneNumber("100-1000"), got[0].Source)
	assert.Equal(t, 30, got[0].Duration)
	assert.Equal(t, calls.Location{Longitude: -79.5, Latitude: 43.7}, got[1].SourceLoc)
	assert.True(t, got[0].Time.Before(got[1].Time))
}

func TestLoad_RejectsMalformedJSON(t *testing.T) {
	_, err := calls.Load(strings.NewReader(`{"customers": [`))
	assert.ErrorIs(t, err, generic.ErrInvalidDataset)
}

func TestLoad_RejectsDuplicateNumber(t *testing.T) {
	_, err := calls.Load(strings.NewReader(`{"customers": [
		{"id": 1, "lines": [{"number": "1", "contract": "mtm"}]},
		{"id": 2, "lines": [{"number": "1", "contract": "mtm"}]}
	]}`))

	var dsErr *generic.DatasetError
	require.ErrorAs(t, err, &dsErr)
	assert.Equal(t, "customers", dsErr.Section)
	assert.Equal(t, 1, dsErr.Index)
}

func TestLoad_RejectsBadEventTime(t *testing.T) {
	_, err := calls.Load(strings.NewReader(`{"events": [
		{"type": "call", "src_number": "1", "dst_number": "2", "time": "yesterday", "duration": 5}
	]}`))

	var dsErr *generic.DatasetError
	require.ErrorAs(t, err, &dsErr)
	assert.Equal(t, "events", dsErr.Section)
	assert.Equal(t, 0, dsErr.Index)
}

func TestLoadFile_SampleDataset(t *testing.T) {
	ds, err := calls.LoadFile("../data/dataset.json")
	require.NoError(t, err)

	assert.Len(t, ds.Customers, 3)
	history := ds.Calls()
	require.Len(t, history, 6, "sms events are skipped")
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].Time.Before(history[i-1].Time))
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := calls.LoadFile("does-not-exist.json")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
