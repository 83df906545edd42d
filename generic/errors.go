/*
errors.go - Centralized error types for the billing engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Contract lifecycle errors - operations on a cancelled contract or one
     with no bill installed yet
  2. Lookup errors - unknown customers, lines, plans
  3. Input errors - malformed datasets and contract definitions

Filters never return errors: an invalid control string leaves the call list
unchanged. Everything in this file concerns contracts and their surroundings.

USAGE:
  if errors.Is(err, generic.ErrContractCancelled) {
      // line already closed
  }

SEE ALSO:
  - contract/contract.go: Returns ContractStateError
  - calls/dataset.go: Returns DatasetError
  - api/handlers.go: Maps errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrContractCancelled is returned by any operation on a cancelled contract.
	ErrContractCancelled = errors.New("contract cancelled")

	// ErrNoActiveBill is returned when a call is billed (or a month-to-month
	// contract cancelled) before any month has been opened.
	ErrNoActiveBill = errors.New("no bill installed for the current month")

	// ErrUnknownPlan is returned when a contract definition names no known plan.
	ErrUnknownPlan = errors.New("unknown contract plan")

	// ErrCustomerNotFound is returned when a customer id is not on the roster.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrLineNotFound is returned when a phone number is not on the roster.
	ErrLineNotFound = errors.New("phone line not found")

	// ErrBillNotFound is returned when no bill exists for a line and month.
	ErrBillNotFound = errors.New("bill not found")

	// ErrInvalidDataset is returned when a dataset cannot be decoded.
	ErrInvalidDataset = errors.New("invalid dataset")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ContractStateError reports which operation was attempted on a contract in
// the wrong state.
type ContractStateError struct {
	Plan      PlanTag
	Operation string
	Err       error
}

func (e *ContractStateError) Error() string {
	return fmt.Sprintf("%s contract: %s: %v", e.Plan, e.Operation, e.Err)
}

func (e *ContractStateError) Unwrap() error { return e.Err }

// DatasetError points at the offending record of a dataset.
type DatasetError struct {
	Section string // "customers" or "events"
	Index   int
	Reason  string
}

func (e *DatasetError) Error() string {
	return fmt.Sprintf("dataset %s[%d]: %s", e.Section, e.Index, e.Reason)
}

func (e *DatasetError) Unwrap() error { return ErrInvalidDataset }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input or
// an operation the contract's state does not allow.
func IsClientError(err error) bool {
	return errors.Is(err, ErrContractCancelled) ||
		errors.Is(err, ErrNoActiveBill) ||
		errors.Is(err, ErrUnknownPlan) ||
		errors.Is(err, ErrInvalidDataset)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrLineNotFound) ||
		errors.Is(err, ErrBillNotFound)
}
