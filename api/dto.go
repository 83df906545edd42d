/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the domain
  types (decimal amounts, billing months, contract interfaces) from the
  wire format.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts are rendered as strings with two decimals ("50.10"), except
  per-minute rates which keep their full precision ("0.025").

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/phone-billing/account"
	"github.com/warp/phone-billing/calls"
	"github.com/warp/phone-billing/contract"
	"github.com/warp/phone-billing/generic"
)

// =============================================================================
// CUSTOMERS
// =============================================================================

// LineDTO is one phone line in API responses.
type LineDTO struct {
	Number string `json:"number"`
	Plan   string `json:"plan"`
	State  string `json:"state"`
	Start  string `json:"start"`
}

// CustomerDTO represents a customer in API responses.
type CustomerDTO struct {
	ID    int       `json:"id"`
	Lines []LineDTO `json:"lines"`
}

// CustomerDetailDTO adds call counts to CustomerDTO.
type CustomerDetailDTO struct {
	CustomerDTO
	OutgoingCalls int `json:"outgoing_calls"`
	IncomingCalls int `json:"incoming_calls"`
}

func toCustomerDTO(c *account.Customer) CustomerDTO {
	lines := make([]LineDTO, len(c.Lines()))
	for i, l := range c.Lines() {
		lines[i] = LineDTO{
			Number: string(l.Number),
			Plan:   string(l.Contract.Plan()),
			State:  string(l.Contract.State()),
			Start:  l.Contract.Start().String(),
		}
	}
	return CustomerDTO{ID: int(c.ID()), Lines: lines}
}

// =============================================================================
// BILLS
// =============================================================================

// BillDTO is one line's bill for a month.
type BillDTO struct {
	ID            string `json:"id"`
	Number        string `json:"number"`
	Plan          string `json:"plan"`
	FixedCost     string `json:"fixed_cost"`
	FreeMinutes   int    `json:"free_minutes"`
	BilledMinutes int    `json:"billed_minutes"`
	Rate          string `json:"rate"`
	Total         string `json:"total"`
}

// CustomerBillsDTO is a customer's bills for one month.
type CustomerBillsDTO struct {
	CustomerID int       `json:"customer_id"`
	Month      string    `json:"month"`
	Bills      []BillDTO `json:"bills"`
	Total      string    `json:"total"`
}

func toBillDTO(lb account.LineBill) BillDTO {
	s := lb.Summary
	return BillDTO{
		ID:            string(s.BillID),
		Number:        string(lb.Number),
		Plan:          string(s.Plan),
		FixedCost:     s.FixedCost.String(),
		FreeMinutes:   s.FreeMinutes,
		BilledMinutes: s.BilledMinutes,
		Rate:          s.Rate.Value.String(),
		Total:         s.Total.String(),
	}
}

// =============================================================================
// CALLS AND FILTERS
// =============================================================================

// CallDTO represents a call in API responses. Locations are
// [longitude, latitude] as in the dataset.
type CallDTO struct {
	Source         string     `json:"src_number"`
	Destination    string     `json:"dst_number"`
	Time           string     `json:"time"`
	Duration       int        `json:"duration"`
	SourceLoc      [2]float64 `json:"src_loc"`
	DestinationLoc [2]float64 `json:"dst_loc"`
}

func toCallDTOs(cs []*calls.Call) []CallDTO {
	dtos := make([]CallDTO, len(cs))
	for i, c := range cs {
		dtos[i] = CallDTO{
			Source:         string(c.Source),
			Destination:    string(c.Destination),
			Time:           c.Time.Format(calls.EventTimeLayout),
			Duration:       c.Duration,
			SourceLoc:      [2]float64{c.SourceLoc.Longitude, c.SourceLoc.Latitude},
			DestinationLoc: [2]float64{c.DestinationLoc.Longitude, c.DestinationLoc.Latitude},
		}
	}
	return dtos
}

// HistoryDTO is a customer's call history.
type HistoryDTO struct {
	CustomerID int       `json:"customer_id"`
	Outgoing   []CallDTO `json:"outgoing"`
	Incoming   []CallDTO `json:"incoming"`
}

// FilterDTO describes one filter of the menu.
type FilterDTO struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

// FilterStepRequest selects a filter by key and gives its control string.
type FilterStepRequest struct {
	Filter  string `json:"filter"`
	Control string `json:"control"`
}

// FilterCallsRequest is a filter pipeline, applied in order to every call.
type FilterCallsRequest struct {
	Steps []FilterStepRequest `json:"steps"`
}

// FilterCallsResponse holds the calls left after the pipeline ran.
type FilterCallsResponse struct {
	Count int       `json:"count"`
	Calls []CallDTO `json:"calls"`
}

// =============================================================================
// CANCELLATION
// =============================================================================

// SettlementDTO is the result of cancelling a line. Amount is signed:
// positive means the customer owes it, negative means it is refunded.
type SettlementDTO struct {
	Number string `json:"number"`
	Plan   string `json:"plan"`
	Amount string `json:"amount"`
	Owed   string `json:"owed"`
	Refund string `json:"refund"`
}

func toSettlementDTO(number generic.PhoneNumber, s contract.Settlement) SettlementDTO {
	return SettlementDTO{
		Number: string(number),
		Plan:   string(s.Plan),
		Amount: s.Amount.String(),
		Owed:   s.Owed().String(),
		Refund: s.Refund().String(),
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
