package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/warp/phone-billing/calls"
	"github.com/warp/phone-billing/contract"
	"github.com/warp/phone-billing/filter"
	"github.com/warp/phone-billing/generic"
)

// =============================================================================
// ROSTER - Replays call history month by month
// =============================================================================

// Roster drives billing for every customer in a Store.
type Roster struct {
	store   Store
	log     logrus.FieldLogger
	current *generic.BillingMonth
}

// NewRoster creates a roster over store. A nil logger defaults to logrus.New().
func NewRoster(store Store, log logrus.FieldLogger) *Roster {
	if log == nil {
		log = logrus.New()
	}
	return &Roster{store: store, log: log}
}

// Store returns the store backing the roster.
func (r *Roster) Store() Store { return r.store }

// CurrentMonth returns the latest month opened, if any.
func (r *Roster) CurrentMonth() (generic.BillingMonth, bool) {
	if r.current == nil {
		return generic.BillingMonth{}, false
	}
	return *r.current, true
}

// LoadDataset creates a customer for every dataset record, with one
// contract per line built by factory from the line's plan name.
func (r *Roster) LoadDataset(ctx context.Context, ds *calls.Dataset, factory *contract.Factory) error {
	for i, rec := range ds.Customers {
		customer := NewCustomer(generic.CustomerID(rec.ID))
		for _, lr := range rec.Lines {
			c, err := factory.ForPlan(lr.Contract)
			if err != nil {
				return fmt.Errorf("customer %d line %s: %w", rec.ID, lr.Number, err)
			}
			customer.AddLine(NewPhoneLine(generic.PhoneNumber(lr.Number), c))
		}
		if err := r.store.SaveCustomer(ctx, customer); err != nil {
			return fmt.Errorf("customers[%d]: %w", i, err)
		}
	}
	r.log.WithField("customers", len(ds.Customers)).Info("Roster loaded")
	return nil
}

// ReplayStats summarises a Replay run.
type ReplayStats struct {
	Calls   int // calls seen
	Billed  int // calls billed to a caller on the roster
	Skipped int // calls whose caller is not on the roster
	Failed  int // calls the caller's contract rejected
	Months  int // months opened
}

// Replay processes history, which must be ordered by time. Every month
// from the first call's month onward is opened on all lines before its
// calls are billed, including months with no calls.
func (r *Roster) Replay(ctx context.Context, history []*calls.Call) (ReplayStats, error) {
	var stats ReplayStats
	for _, call := range history {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Calls++

		opened, err := r.AdvanceTo(ctx, call.Month())
		if err != nil {
			return stats, err
		}
		stats.Months += opened

		billed, err := r.route(ctx, call)
		switch {
		case err != nil:
			stats.Failed++
			r.log.WithError(err).WithField("source", call.Source).Warn("Call not billed")
		case billed:
			stats.Billed++
		default:
			stats.Skipped++
		}
	}
	r.log.WithFields(logrus.Fields{
		"calls":   stats.Calls,
		"billed":  stats.Billed,
		"skipped": stats.Skipped,
		"failed":  stats.Failed,
		"months":  stats.Months,
	}).Info("Call history replayed")
	return stats, nil
}

// AdvanceTo opens every month after the current one up to and including
// month. Months at or before the current one are ignored. Returns how many
// months were opened.
func (r *Roster) AdvanceTo(ctx context.Context, month generic.BillingMonth) (int, error) {
	next := month
	if r.current != nil {
		if !r.current.Before(month) {
			return 0, nil
		}
		next = r.current.Next()
	}

	customers, err := r.store.ListCustomers(ctx)
	if err != nil {
		return 0, err
	}
	opened := 0
	for {
		for _, c := range customers {
			if err := c.NewMonth(next); err != nil {
				return opened, fmt.Errorf("open %s for customer %d: %w", next, c.ID(), err)
			}
		}
		opened++
		m := next
		r.current = &m
		r.log.WithField("month", next.String()).Debug("Month opened")
		if next == month {
			return opened, nil
		}
		next = next.Next()
	}
}

// route bills call to its caller and records it on its callee. It reports
// whether the caller was found.
func (r *Roster) route(ctx context.Context, call *calls.Call) (bool, error) {
	billed := false
	src, _, err := r.store.FindLine(ctx, call.Source)
	switch {
	case err == nil:
		if err := src.MakeCall(call); err != nil {
			return false, err
		}
		billed = true
	case !errors.Is(err, generic.ErrLineNotFound):
		return false, err
	}

	dst, _, err := r.store.FindLine(ctx, call.Destination)
	switch {
	case err == nil:
		if err := dst.ReceiveCall(call); err != nil {
			return billed, err
		}
	case !errors.Is(err, generic.ErrLineNotFound):
		return billed, err
	}
	return billed, nil
}

// FilterCustomers returns the roster as filter input.
func (r *Roster) FilterCustomers(ctx context.Context) ([]filter.Customer, error) {
	customers, err := r.store.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]filter.Customer, len(customers))
	for i, c := range customers {
		result[i] = c
	}
	return result, nil
}

// AllCalls returns every call made on the roster, as Reset builds it.
func (r *Roster) AllCalls(ctx context.Context) ([]*calls.Call, error) {
	customers, err := r.FilterCustomers(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Reset{}.Apply(customers, nil, ""), nil
}
