// Package store provides in-memory implementations of the billing collaborators.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/warp/billing-engine/billing"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements billing.BillRepository, billing.UnitDirectory and
// billing.PaymentRecorder.
type Memory struct {
	mu    sync.RWMutex
	bills []billing.Bill
	index map[billing.BillID]int
	units map[billing.UnitID]billing.Unit
}

func NewMemory() *Memory {
	return &Memory{
		index: make(map[billing.BillID]int),
		units: make(map[billing.UnitID]billing.Unit),
	}
}

// =============================================================================
// BILLS
// =============================================================================

// Save appends bills atomically. A duplicate ID rejects the whole batch.
func (m *Memory) Save(_ context.Context, bills ...billing.Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[billing.BillID]bool, len(bills))
	for _, b := range bills {
		if _, exists := m.index[b.ID]; exists || seen[b.ID] {
			return fmt.Errorf("%w: %s", billing.ErrDuplicateBill, b.ID)
		}
		seen[b.ID] = true
	}

	for _, b := range bills {
		m.index[b.ID] = len(m.bills)
		m.bills = append(m.bills, b)
	}
	return nil
}

// Get returns a bill by ID.
func (m *Memory) Get(_ context.Context, id billing.BillID) (billing.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[id]
	if !ok {
		return billing.Bill{}, billing.ErrBillNotFound
	}
	return m.bills[i], nil
}

// List filters, orders and paginates bills.
func (m *Memory) List(_ context.Context, filter billing.BillFilter) (billing.Paginated[billing.Bill], error) {
	m.mu.RLock()
	matched := make([]billing.Bill, 0, len(m.bills))
	for _, b := range m.bills {
		if filter.Matches(b) {
			matched = append(matched, b)
		}
	}
	m.mu.RUnlock()

	billing.SortBills(matched, filter.Ordering)
	return billing.Paginate(matched, filter.Page, filter.PageSize), nil
}

// RecordPaymentStatus transitions a bill's payment status.
func (m *Memory) RecordPaymentStatus(_ context.Context, id billing.BillID, status billing.PaymentStatus) (billing.Bill, error) {
	if !status.Valid() {
		return billing.Bill{}, billing.ErrInvalidPaymentStatus
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[id]
	if !ok {
		return billing.Bill{}, billing.ErrBillNotFound
	}
	m.bills[i].PaymentStatus = status
	return m.bills[i], nil
}

// =============================================================================
// UNIT DIRECTORY
// =============================================================================

// SaveUnit inserts or replaces a unit record.
func (m *Memory) SaveUnit(_ context.Context, u billing.Unit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u.Profile.UnitID = u.ID
	m.units[u.ID] = u
	return nil
}

// Unit returns the full directory record.
func (m *Memory) Unit(_ context.Context, id billing.UnitID) (billing.Unit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.units[id]
	if !ok {
		return billing.Unit{}, &billing.UnknownUnitError{UnitID: id}
	}
	return u, nil
}

// Profile implements billing.UnitDirectory.
func (m *Memory) Profile(ctx context.Context, id billing.UnitID) (billing.UnitFeeProfile, error) {
	u, err := m.Unit(ctx, id)
	return u.Profile, err
}

// Label implements billing.UnitDirectory.
func (m *Memory) Label(ctx context.Context, id billing.UnitID) (billing.UnitLabel, error) {
	u, err := m.Unit(ctx, id)
	return u.Label, err
}
