/*
scenarios.go - Built-in demo datasets

PURPOSE:

	Provides pre-built datasets so the server can be explored without a data
	file. Each scenario builds a calls.Dataset that exercises one billing
	rule; loading it replaces the roster and replays its history.

AVAILABLE SCENARIOS:

	plans-tour:     One customer per plan, a few calls over three months
	term-overage:   A term line that runs past its free minutes
	prepaid-topup:  A prepaid line that drains its credit and is topped up
	busy-city:      Many customers and a few hundred calls across the map

USAGE VIA API:

	GET  /api/scenarios
	POST /api/scenarios/load
	{"scenario_id": "term-overage"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' with ID, name, description and a build function
 2. The build function returns a dataset; Load does the rest

NOTE:

	Loading a scenario discards the current roster, including cancellations.

SEE ALSO:
  - handlers.go: Handler.Load
  - calls/dataset.go: Dataset shape
*/
package api

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/warp/phone-billing/calls"
	"github.com/warp/phone-billing/filter"
)

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// LoadScenarioResponse reports the replay of a loaded scenario.
type LoadScenarioResponse struct {
	Scenario ScenarioDTO `json:"scenario"`
	Calls    int         `json:"calls"`
	Billed   int         `json:"billed"`
	Skipped  int         `json:"skipped"`
	Failed   int         `json:"failed"`
	Months   int         `json:"months"`
}

type scenario struct {
	ScenarioDTO
	build func() *calls.Dataset
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "plans-tour",
			Name:        "Plans Tour",
			Description: "One customer on each plan calling each other over three months",
		},
		build: plansTourDataset,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "term-overage",
			Name:        "Term Overage",
			Description: "Term line using 130 minutes against a 100 minute allowance",
		},
		build: termOverageDataset,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "prepaid-topup",
			Name:        "Prepaid Top-Up",
			Description: "Prepaid line that drains its credit below the threshold and is recharged",
		},
		build: prepaidTopUpDataset,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "busy-city",
			Name:        "Busy City",
			Description: "Twelve customers on mixed plans making calls across the map for six months",
		},
		build: busyCityDataset,
	},
}

// Scenario builds the dataset of a named scenario.
func Scenario(id string) (*calls.Dataset, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s.build(), true
		}
	}
	return nil, false
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the id of the loaded dataset.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range scenarios {
		if s.ID == h.current {
			writeJSON(w, http.StatusOK, s.ScenarioDTO)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: h.current, Name: h.current, Description: "Dataset loaded at startup"})
}

// LoadScenario replaces the roster with a predefined scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var chosen *scenario
	for i := range scenarios {
		if scenarios[i].ID == req.ScenarioID {
			chosen = &scenarios[i]
		}
	}
	if chosen == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}

	stats, err := h.Load(r.Context(), chosen.ID, chosen.build())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, LoadScenarioResponse{
		Scenario: chosen.ScenarioDTO,
		Calls:    stats.Calls,
		Billed:   stats.Billed,
		Skipped:  stats.Skipped,
		Failed:   stats.Failed,
		Months:   stats.Months,
	})
}

// =============================================================================
// DATASET BUILDERS
// =============================================================================

// downtown is a point well inside the map bounds.
var downtown = [2]float64{-79.40, 43.65}

type datasetBuilder struct {
	ds *calls.Dataset
}

func newDatasetBuilder() *datasetBuilder {
	return &datasetBuilder{ds: &calls.Dataset{}}
}

func (b *datasetBuilder) customer(id int, lines ...calls.LineRecord) {
	b.ds.Customers = append(b.ds.Customers, calls.CustomerRecord{ID: id, Lines: lines})
}

func (b *datasetBuilder) call(src, dst string, at time.Time, seconds int, srcLoc, dstLoc [2]float64) {
	b.ds.Events = append(b.ds.Events, calls.EventRecord{
		Type:      "call",
		SrcNumber: src,
		DstNumber: dst,
		Time:      at.Format(calls.EventTimeLayout),
		Duration:  seconds,
		SrcLoc:    srcLoc,
		DstLoc:    dstLoc,
	})
}

func line(number, plan string) calls.LineRecord {
	return calls.LineRecord{Number: number, Contract: plan}
}

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func plansTourDataset() *calls.Dataset {
	b := newDatasetBuilder()
	b.customer(1001, line("100-1000", "mtm"))
	b.customer(1002, line("200-2000", "term"))
	b.customer(1003, line("300-3000", "prepaid"))

	b.call("100-1000", "200-2000", at(2018, time.January, 3, 9), 125, downtown, downtown)
	b.call("200-2000", "300-3000", at(2018, time.January, 9, 18), 600, downtown, downtown)
	b.call("300-3000", "100-1000", at(2018, time.February, 14, 12), 61, downtown, downtown)
	b.call("100-1000", "300-3000", at(2018, time.March, 1, 8), 3600, downtown, downtown)
	return b.ds
}

func termOverageDataset() *calls.Dataset {
	b := newDatasetBuilder()
	b.customer(2001, line("200-0001", "term"))
	b.customer(2002, line("200-0002", "mtm"))

	// 13 ten-minute calls: 130 minutes, 30 over the allowance
	for i := 0; i < 13; i++ {
		b.call("200-0001", "200-0002", at(2018, time.January, 2+i, 10), 600, downtown, downtown)
	}
	b.call("200-0001", "200-0002", at(2018, time.February, 1, 10), 600, downtown, downtown)
	return b.ds
}

func prepaidTopUpDataset() *calls.Dataset {
	b := newDatasetBuilder()
	b.customer(3001, line("300-0001", "prepaid"))
	b.customer(3002, line("300-0002", "mtm"))

	// 62 hour-long calls cost 93.00, leaving 7.00 of the 100.00 deposit
	for i := 0; i < 62; i++ {
		b.call("300-0001", "300-0002", at(2018, time.January, 1+i%28, i%24), 3600, downtown, downtown)
	}
	b.call("300-0001", "300-0002", at(2018, time.February, 1, 9), 120, downtown, downtown)
	return b.ds
}

func busyCityDataset() *calls.Dataset {
	rng := rand.New(rand.NewSource(2018))
	b := newDatasetBuilder()

	plans := []string{"mtm", "term", "prepaid"}
	var numbers []string
	for i := 0; i < 12; i++ {
		id := 4001 + i
		lines := []calls.LineRecord{line(fmt.Sprintf("400-%04d", i*2), plans[i%3])}
		if i%4 == 0 {
			lines = append(lines, line(fmt.Sprintf("400-%04d", i*2+1), plans[(i+1)%3]))
		}
		for _, l := range lines {
			numbers = append(numbers, l.Number)
		}
		b.customer(id, lines...)
	}

	point := func() [2]float64 {
		return [2]float64{
			filter.MapMinLongitude + rng.Float64()*(filter.MapMaxLongitude-filter.MapMinLongitude),
			filter.MapMinLatitude + rng.Float64()*(filter.MapMaxLatitude-filter.MapMinLatitude),
		}
	}

	start := at(2018, time.January, 1, 0)
	for i := 0; i < 300; i++ {
		src := numbers[rng.Intn(len(numbers))]
		dst := numbers[rng.Intn(len(numbers))]
		if src == dst {
			dst = "999-0000"
		}
		offset := time.Duration(i) * 14 * time.Hour
		b.call(src, dst, start.Add(offset), 10+rng.Intn(1800), point(), point())
	}
	return b.ds
}
