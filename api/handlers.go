/*
handlers.go - HTTP API handlers for the phone billing system

PURPOSE:
  Exposes the replayed roster via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the account, contract and filter
  packages.

ENDPOINTS:
  Customers:
    GET    /api/customers                     List customers and their lines
    GET    /api/customers/{id}                One customer
    GET    /api/customers/{id}/bills          Bills for ?year=&month= (default: current month)
    GET    /api/customers/{id}/calls          Outgoing and incoming calls

  Calls:
    GET    /api/filters                       Filter menu
    POST   /api/calls/filter                  Run a filter pipeline over all calls

  Lines:
    POST   /api/lines/{number}/cancel         Cancel a line's contract

  Scenarios:
    GET    /api/scenarios                     List demo datasets
    GET    /api/scenarios/current             Dataset currently loaded
    POST   /api/scenarios/load                Replace the roster with a demo dataset

ARCHITECTURE:
  Handler holds the roster plus metrics and logger. Contracts and bills are
  not safe for concurrent use, so reads take the read lock while
  cancellation and dataset loads take the write lock.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed input, unknown filter, no bill to settle
  - 404: Unknown customer, line or bill
  - 409: Line already cancelled
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo datasets
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/warp/phone-billing/account"
	"github.com/warp/phone-billing/calls"
	"github.com/warp/phone-billing/contract"
	"github.com/warp/phone-billing/filter"
	"github.com/warp/phone-billing/generic"
	"github.com/warp/phone-billing/observability"
	"github.com/warp/phone-billing/store/memory"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Roster  *account.Roster
	Factory *contract.Factory
	Metrics *observability.Metrics
	Log     logrus.FieldLogger

	mu      sync.RWMutex
	current string // id of the loaded dataset
}

// NewHandler creates a handler with an empty roster. A nil logger defaults
// to logrus.New() and nil metrics to a private registry.
func NewHandler(factory *contract.Factory, metrics *observability.Metrics, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	if metrics == nil {
		metrics = observability.NewMetrics(nil)
	}
	return &Handler{
		Roster:  account.NewRoster(memory.New(), log),
		Factory: factory,
		Metrics: metrics,
		Log:     log,
	}
}

// Load replaces the roster with the customers of ds and replays its calls.
// The previous roster is kept if the dataset cannot be loaded.
func (h *Handler) Load(ctx context.Context, id string, ds *calls.Dataset) (account.ReplayStats, error) {
	roster := account.NewRoster(memory.New(), h.Log.WithField("dataset", id))
	if err := roster.LoadDataset(ctx, ds, h.Factory); err != nil {
		return account.ReplayStats{}, err
	}
	stats, err := roster.Replay(ctx, ds.Calls())
	if err != nil {
		return stats, err
	}

	h.mu.Lock()
	h.Roster = roster
	h.current = id
	h.mu.Unlock()

	h.Metrics.CustomersTotal.Set(float64(len(ds.Customers)))
	h.Metrics.ObserveReplay(stats.Billed, stats.Skipped, stats.Failed, stats.Months)
	return stats, nil
}

// =============================================================================
// CUSTOMER HANDLERS
// =============================================================================

// ListCustomers returns all customers.
// GET /api/customers
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	customers, err := h.Roster.Store().ListCustomers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list customers", err)
		return
	}

	dtos := make([]CustomerDTO, len(customers))
	for i, c := range customers {
		dtos[i] = toCustomerDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCustomer returns a single customer.
// GET /api/customers/{id}
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.customer(w, r)
	if !ok {
		return
	}
	outgoing, incoming := c.History()
	writeJSON(w, http.StatusOK, CustomerDetailDTO{
		CustomerDTO:   toCustomerDTO(c),
		OutgoingCalls: len(outgoing),
		IncomingCalls: len(incoming),
	})
}

// GetBills returns the customer's bills for one month.
// GET /api/customers/{id}/bills?year=2018&month=1
func (h *Handler) GetBills(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.customer(w, r)
	if !ok {
		return
	}
	month, err := h.billingMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid billing month", err)
		return
	}

	bills, total := c.BillSummaries(month)
	if len(bills) == 0 {
		writeError(w, http.StatusNotFound, "No bills for month "+month.String(), generic.ErrBillNotFound)
		return
	}
	dtos := make([]BillDTO, len(bills))
	for i, b := range bills {
		dtos[i] = toBillDTO(b)
	}
	writeJSON(w, http.StatusOK, CustomerBillsDTO{
		CustomerID: int(c.ID()),
		Month:      month.String(),
		Bills:      dtos,
		Total:      total.String(),
	})
}

// GetHistory returns the customer's outgoing and incoming calls.
// GET /api/customers/{id}/calls
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.customer(w, r)
	if !ok {
		return
	}
	outgoing, incoming := c.History()
	writeJSON(w, http.StatusOK, HistoryDTO{
		CustomerID: int(c.ID()),
		Outgoing:   toCallDTOs(outgoing),
		Incoming:   toCallDTOs(incoming),
	})
}

// =============================================================================
// FILTER HANDLERS
// =============================================================================

// ListFilters returns the filter menu.
// GET /api/filters
func (h *Handler) ListFilters(w http.ResponseWriter, r *http.Request) {
	menu := filter.Menu()
	dtos := make([]FilterDTO, len(menu))
	for i, e := range menu {
		dtos[i] = FilterDTO{Key: e.Key, Description: e.Filter.String()}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// FilterCalls runs a pipeline over every call on the roster. An empty
// pipeline returns all calls. Steps whose control string is invalid leave
// the calls unchanged.
// POST /api/calls/filter
func (h *Handler) FilterCalls(w http.ResponseWriter, r *http.Request) {
	var req FilterCallsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	pipeline := make(filter.Pipeline, 0, len(req.Steps))
	for _, s := range req.Steps {
		f, ok := filter.ByKey(s.Filter)
		if !ok {
			writeError(w, http.StatusBadRequest, "Unknown filter: "+s.Filter, nil)
			return
		}
		pipeline = append(pipeline, filter.Step{Filter: f, Control: s.Control})
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	customers, err := h.Roster.FilterCustomers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load customers", err)
		return
	}
	data := filter.Reset{}.Apply(customers, nil, "")
	result := pipeline.Run(customers, data)

	for _, s := range req.Steps {
		h.Metrics.FilterRunsTotal.WithLabelValues(s.Filter).Inc()
	}
	h.Metrics.FilteredCallsCount.Observe(float64(len(result)))

	writeJSON(w, http.StatusOK, FilterCallsResponse{Count: len(result), Calls: toCallDTOs(result)})
}

// =============================================================================
// LINE HANDLERS
// =============================================================================

// CancelLine cancels the contract of a line and returns its settlement.
// POST /api/lines/{number}/cancel
func (h *Handler) CancelLine(w http.ResponseWriter, r *http.Request) {
	number := generic.PhoneNumber(chi.URLParam(r, "number"))

	h.mu.Lock()
	defer h.mu.Unlock()

	owner, _, err := h.Roster.Store().FindLine(r.Context(), number)
	if err != nil {
		h.writeDomainError(w, "Line not found", err)
		return
	}
	settlement, err := owner.CancelLine(number)
	if err != nil {
		h.writeDomainError(w, "Failed to cancel line", err)
		return
	}

	h.Metrics.SettlementsTotal.WithLabelValues(string(settlement.Plan)).Inc()
	h.Log.WithFields(logrus.Fields{
		"customer": owner.ID(),
		"number":   number,
		"plan":     settlement.Plan,
		"amount":   settlement.Amount.String(),
	}).Info("Line cancelled")

	writeJSON(w, http.StatusOK, toSettlementDTO(number, settlement))
}

// =============================================================================
// HELPERS
// =============================================================================

// customer resolves the {id} URL parameter, writing the error reply itself
// when it fails.
func (h *Handler) customer(w http.ResponseWriter, r *http.Request) (*account.Customer, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid customer id", err)
		return nil, false
	}
	c, err := h.Roster.Store().GetCustomer(r.Context(), generic.CustomerID(id))
	if err != nil {
		h.writeDomainError(w, "Customer not found", err)
		return nil, false
	}
	return c, true
}

// billingMonth reads ?year=&month=. Without them, the roster's current
// month is used.
func (h *Handler) billingMonth(r *http.Request) (generic.BillingMonth, error) {
	q := r.URL.Query()
	if q.Get("year") == "" && q.Get("month") == "" {
		if current, ok := h.Roster.CurrentMonth(); ok {
			return current, nil
		}
		return generic.BillingMonth{}, errors.New("no month has been billed yet")
	}
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		return generic.BillingMonth{}, errors.New("year must be a number")
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil || month < 1 || month > 12 {
		return generic.BillingMonth{}, errors.New("month must be 1-12")
	}
	return generic.NewBillingMonth(year, time.Month(month)), nil
}

// writeDomainError maps domain errors to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, generic.ErrContractCancelled):
		writeError(w, http.StatusConflict, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Log.WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
