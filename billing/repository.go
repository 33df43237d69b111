/*
repository.go - Contracts for the engine's external collaborators

PURPOSE:
  The engine never performs I/O. These interfaces describe what the caller
  side provides: a bill repository with paginated filtered listings, a unit
  directory that resolves profiles and labels, and a payment recorder that
  owns payment_status transitions.

PAGINATION:
  Listings return Paginated[T] shaped like {count, next, previous, results}.
  Next/Previous hold page numbers and are nil at the ends.

DUE STATUS FILTERING:
  DueStatus is derived, so a filter on it is evaluated with Classify against
  BillFilter.Today at query time. Nothing stores a due status.

IMPLEMENTATIONS:
  - billing/store/memory.go: in-memory, for tests and dev
  - store/sqlite/sqlite.go: SQLite

SEE ALSO:
  - service.go: Reconciler, which consumes these interfaces
*/
package billing

import (
	"context"
	"sort"
	"strings"
)

// =============================================================================
// FILTERS & PAGINATION
// =============================================================================

// Ordering names a sort key; a leading "-" sorts descending.
type Ordering string

const (
	OrderDueDate       Ordering = "due_date"
	OrderDueDateDesc   Ordering = "-due_date"
	OrderAmountDue     Ordering = "amount_due"
	OrderAmountDueDesc Ordering = "-amount_due"
	OrderCreatedAt     Ordering = "created_at"
	OrderCreatedAtDesc Ordering = "-created_at"
)

// DefaultPageSize applies when a filter leaves PageSize unset.
const DefaultPageSize = 20

// Valid reports whether o is a known ordering. Empty is valid (due_date).
func (o Ordering) Valid() bool {
	switch o {
	case "", OrderDueDate, OrderDueDateDesc, OrderAmountDue, OrderAmountDueDesc, OrderCreatedAt, OrderCreatedAtDesc:
		return true
	}
	return false
}

// BillFilter selects bills. Zero-valued fields do not filter.
type BillFilter struct {
	UserID    UserID
	UnitID    UnitID
	DueStatus DueStatus
	Today     Date // required when DueStatus is set
	Search    string
	Year      int
	Ordering  Ordering
	Page      int // 1-based
	PageSize  int
}

// Matches applies every non-pagination criterion of f to b.
func (f BillFilter) Matches(b Bill) bool {
	if f.UserID != "" && b.UserID != f.UserID {
		return false
	}
	if f.UnitID != "" && b.UnitID != f.UnitID {
		return false
	}
	if f.Year != 0 && b.DueDate.Year() != f.Year {
		return false
	}
	if f.DueStatus != "" && b.DueStatus(f.Today) != f.DueStatus {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(string(b.ID)), q) &&
			!strings.Contains(strings.ToLower(string(b.UserID)), q) &&
			!strings.Contains(strings.ToLower(string(b.UnitID)), q) {
			return false
		}
	}
	return true
}

// SortBills orders bills in place by o, breaking ties by ID.
func SortBills(bills []Bill, o Ordering) {
	desc := strings.HasPrefix(string(o), "-")
	key := Ordering(strings.TrimPrefix(string(o), "-"))

	cmp := func(a, b Bill) int {
		switch key {
		case OrderAmountDue:
			return a.AmountDue.Cmp(b.AmountDue)
		case OrderCreatedAt:
			return a.CreatedAt.Time.Compare(b.CreatedAt.Time)
		default:
			return a.DueDate.Time.Compare(b.DueDate.Time)
		}
	}

	sort.SliceStable(bills, func(i, j int) bool {
		c := cmp(bills[i], bills[j])
		if c == 0 {
			return bills[i].ID < bills[j].ID
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// Paginated is one page of a filtered listing.
type Paginated[T any] struct {
	Count    int
	Next     *int
	Previous *int
	Results  []T
}

// Paginate slices items into the requested 1-based page.
func Paginate[T any](items []T, page, pageSize int) Paginated[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}

	p := Paginated[T]{Count: len(items), Results: []T{}}
	start := (page - 1) * pageSize
	if start < len(items) {
		end := start + pageSize
		if end > len(items) {
			end = len(items)
		}
		p.Results = items[start:end]
		if end < len(items) {
			next := page + 1
			p.Next = &next
		}
	}
	if page > 1 {
		prev := page - 1
		p.Previous = &prev
	}
	return p
}

// =============================================================================
// COLLABORATORS
// =============================================================================

// BillRepository persists and queries bills.
type BillRepository interface {
	// List returns one page of bills matching filter.
	List(ctx context.Context, filter BillFilter) (Paginated[Bill], error)

	// Get returns a bill or ErrBillNotFound.
	Get(ctx context.Context, id BillID) (Bill, error)

	// Save persists newly issued bills atomically.
	Save(ctx context.Context, bills ...Bill) error
}

// UnitDirectory resolves unit assignments.
type UnitDirectory interface {
	// Profile returns the unit's fee profile or an UnknownUnitError.
	Profile(ctx context.Context, id UnitID) (UnitFeeProfile, error)

	// Label returns the unit's display label or an UnknownUnitError.
	Label(ctx context.Context, id UnitID) (UnitLabel, error)
}

// PaymentRecorder is the only collaborator that changes payment_status.
type PaymentRecorder interface {
	RecordPaymentStatus(ctx context.Context, id BillID, status PaymentStatus) (Bill, error)
}
