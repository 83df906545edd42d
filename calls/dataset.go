/*
dataset.go - JSON call-log dataset loader

PURPOSE:
  Reads the dataset file the simulation replays: the customer roster (ids,
  phone lines and the plan each line is on) and the raw event history.
  Only "call" events are turned into Calls; other event types (sms) are
  skipped.

JSON SCHEMA:
  {
    "customers": [
      {"id": 1234, "lines": [{"number": "100-1200", "contract": "term"}]}
    ],
    "events": [
      {"type": "call", "src_number": "100-1200", "dst_number": "200-3400",
       "time": "2018-01-01 01:01:04", "duration": 120,
       "src_loc": [-79.42, 43.65], "dst_loc": [-79.38, 43.70]}
    ]
  }

VALIDATION:
  Structural problems are reported as *generic.DatasetError so callers can
  point at the offending record. Contract names are not checked here; the
  account package maps them to contract kinds.

SEE ALSO:
  - account/roster.go: Builds customers and replays Calls()
  - contract/factory.go: Contract kinds
*/
package calls

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/warp/phone-billing/generic"
)

// EventTimeLayout is the timestamp format used by dataset events.
const EventTimeLayout = "2006-01-02 15:04:05"

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// Dataset is the decoded dataset file.
type Dataset struct {
	Customers []CustomerRecord `json:"customers"`
	Events    []EventRecord    `json:"events"`
}

// CustomerRecord is one customer and the lines they own.
type CustomerRecord struct {
	ID    int          `json:"id"`
	Lines []LineRecord `json:"lines"`
}

// LineRecord is one phone line and its plan name ("mtm", "term", "prepaid").
type LineRecord struct {
	Number   string `json:"number"`
	Contract string `json:"contract"`
}

// EventRecord is one raw event; only Type == "call" is used.
type EventRecord struct {
	Type      string     `json:"type"`
	SrcNumber string     `json:"src_number"`
	DstNumber string     `json:"dst_number"`
	Time      string     `json:"time"`
	Duration  int        `json:"duration"`
	SrcLoc    [2]float64 `json:"src_loc"`
	DstLoc    [2]float64 `json:"dst_loc"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load decodes and validates a dataset.
func Load(r io.Reader) (*Dataset, error) {
	var ds Dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return nil, fmt.Errorf("%w: %v", generic.ErrInvalidDataset, err)
	}
	if err := ds.validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// LoadFile opens path and calls Load.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func (ds *Dataset) validate() error {
	seenIDs := make(map[int]bool)
	seenNumbers := make(map[string]bool)
	for i, c := range ds.Customers {
		if seenIDs[c.ID] {
			return &generic.DatasetError{Section: "customers", Index: i, Reason: fmt.Sprintf("duplicate id %d", c.ID)}
		}
		seenIDs[c.ID] = true
		for _, l := range c.Lines {
			if l.Number == "" {
				return &generic.DatasetError{Section: "customers", Index: i, Reason: "line without number"}
			}
			if seenNumbers[l.Number] {
				return &generic.DatasetError{Section: "customers", Index: i, Reason: "duplicate number " + l.Number}
			}
			seenNumbers[l.Number] = true
		}
	}
	for i, e := range ds.Events {
		if e.Type != "call" {
			continue
		}
		if _, err := time.Parse(EventTimeLayout, e.Time); err != nil {
			return &generic.DatasetError{Section: "events", Index: i, Reason: "bad time " + e.Time}
		}
		if e.Duration < 0 {
			return &generic.DatasetError{Section: "events", Index: i, Reason: "negative duration"}
		}
	}
	return nil
}

// Calls converts the call events to Calls ordered by time. Events with equal
// timestamps keep their file order.
func (ds *Dataset) Calls() []*Call {
	var result []*Call
	for _, e := range ds.Events {
		if e.Type != "call" {
			continue
		}
		// validated in Load
		at, _ := time.Parse(EventTimeLayout, e.Time)
		result = append(result, &Call{
			Source:         generic.PhoneNumber(e.SrcNumber),
			Destination:    generic.PhoneNumber(e.DstNumber),
			Time:           at,
			Duration:       e.Duration,
			SourceLoc:      Location{Longitude: e.SrcLoc[0], Latitude: e.SrcLoc[1]},
			DestinationLoc: Location{Longitude: e.DstLoc[0], Latitude: e.DstLoc[1]},
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Time.Before(result[j].Time)
	})
	return result
}
