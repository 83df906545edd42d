// Package memory provides an in-memory account.Store.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/warp/phone-billing/account"
	"github.com/warp/phone-billing/generic"
)

// =============================================================================
// MEMORY STORE - In-memory customer roster
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	customers map[generic.CustomerID]*account.Customer
	order     []generic.CustomerID
	numbers   map[generic.PhoneNumber]generic.CustomerID
}

func New() *Memory {
	return &Memory{
		customers: make(map[generic.CustomerID]*account.Customer),
		numbers:   make(map[generic.PhoneNumber]generic.CustomerID),
	}
}

var _ account.Store = (*Memory)(nil)

// SaveCustomer adds or replaces a customer and indexes its numbers.
func (m *Memory) SaveCustomer(_ context.Context, c *account.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Check every number first so a conflict leaves the store untouched
	for _, n := range c.PhoneNumbers() {
		if owner, ok := m.numbers[n]; ok && owner != c.ID() {
			return fmt.Errorf("number %s already belongs to customer %d", n, owner)
		}
	}

	if old, ok := m.customers[c.ID()]; ok {
		for _, n := range old.PhoneNumbers() {
			delete(m.numbers, n)
		}
	} else {
		m.order = append(m.order, c.ID())
	}
	m.customers[c.ID()] = c
	for _, n := range c.PhoneNumbers() {
		m.numbers[n] = c.ID()
	}
	return nil
}

func (m *Memory) GetCustomer(_ context.Context, id generic.CustomerID) (*account.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %d: %w", id, generic.ErrCustomerNotFound)
	}
	return c, nil
}

func (m *Memory) ListCustomers(_ context.Context) ([]*account.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*account.Customer, len(m.order))
	for i, id := range m.order {
		result[i] = m.customers[id]
	}
	return result, nil
}

func (m *Memory) FindLine(_ context.Context, number generic.PhoneNumber) (*account.Customer, *account.PhoneLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.numbers[number]
	if !ok {
		return nil, nil, fmt.Errorf("number %s: %w", number, generic.ErrLineNotFound)
	}
	c := m.customers[id]
	line, _ := c.Line(number)
	return c, line, nil
}
