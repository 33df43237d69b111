package billing

// =============================================================================
// DUE STATUS - derived on every read, never persisted
// =============================================================================

// DueStatus is the urgency of a bill relative to "today".
type DueStatus string

const (
	DueStatusPaid     DueStatus = "paid"
	DueStatusOverdue  DueStatus = "overdue"
	DueStatusDueToday DueStatus = "due_today"
	DueStatusUpcoming DueStatus = "upcoming"
)

// Valid reports whether s is one of the four statuses.
func (s DueStatus) Valid() bool {
	switch s {
	case DueStatusPaid, DueStatusOverdue, DueStatusDueToday, DueStatusUpcoming:
		return true
	}
	return false
}

// Classify maps (due date, payment state, today) to a DueStatus.
//
// Paid is absorbing: no date logic runs for a paid bill. Rejected is
// treated exactly like pending; rejection does not change urgency.
// Today must be supplied by the caller; Classify never reads the clock.
func Classify(dueDate Date, status PaymentStatus, today Date) DueStatus {
	if status == PaymentPaid {
		return DueStatusPaid
	}
	switch {
	case dueDate.Before(today):
		return DueStatusOverdue
	case dueDate.Equal(today):
		return DueStatusDueToday
	default:
		return DueStatusUpcoming
	}
}
