package account

import (
	"context"

	"github.com/warp/phone-billing/generic"
)

// =============================================================================
// STORE - Customer lookup
// =============================================================================

// Store holds the customer roster. Implementations are in-memory only; the
// roster lives for the lifetime of the process.
//
// IMPLEMENTATIONS:
//   - store/memory: map-backed, safe for concurrent readers
type Store interface {
	// SaveCustomer adds or replaces a customer. Fails if one of its numbers
	// already belongs to a different customer.
	SaveCustomer(ctx context.Context, c *Customer) error

	// GetCustomer returns generic.ErrCustomerNotFound for unknown ids.
	GetCustomer(ctx context.Context, id generic.CustomerID) (*Customer, error)

	// ListCustomers returns customers in the order they were first saved.
	ListCustomers(ctx context.Context) ([]*Customer, error)

	// FindLine returns the owner and line of a number, or
	// generic.ErrLineNotFound.
	FindLine(ctx context.Context, number generic.PhoneNumber) (*Customer, *PhoneLine, error)
}
