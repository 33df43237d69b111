package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/billing-engine/billing"
)

func TestClassify_Transitions(t *testing.T) {
	june1 := day(2025, time.June, 1)

	tests := []struct {
		name   string
		status billing.PaymentStatus
		today  billing.Date
		want   billing.DueStatus
	}{
		{"pending, due today", billing.PaymentPending, june1, billing.DueStatusDueToday},
		{"pending, day after", billing.PaymentPending, day(2025, time.June, 2), billing.DueStatusOverdue},
		{"pending, day before", billing.PaymentPending, day(2025, time.May, 31), billing.DueStatusUpcoming},
		{"paid, long after", billing.PaymentPaid, day(2026, time.January, 1), billing.DueStatusPaid},
		{"paid, before due", billing.PaymentPaid, day(2025, time.January, 1), billing.DueStatusPaid},
		{"paid, due today", billing.PaymentPaid, june1, billing.DueStatusPaid},
		{"rejected, day after", billing.PaymentRejected, day(2025, time.June, 2), billing.DueStatusOverdue},
		{"rejected, due today", billing.PaymentRejected, june1, billing.DueStatusDueToday},
		{"rejected, upcoming", billing.PaymentRejected, day(2025, time.May, 1), billing.DueStatusUpcoming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, billing.Classify(june1, tt.status, tt.today))
		})
	}
}

func TestClassify_RejectedMatchesPending(t *testing.T) {
	due := day(2025, time.March, 15)
	for offset := -40; offset <= 40; offset++ {
		today := due.AddDays(offset)
		assert.Equal(t,
			billing.Classify(due, billing.PaymentPending, today),
			billing.Classify(due, billing.PaymentRejected, today),
			"offset %d", offset)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	due := day(2025, time.June, 1)
	today := day(2025, time.June, 10)
	first := billing.Classify(due, billing.PaymentPending, today)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, billing.Classify(due, billing.PaymentPending, today))
	}
}

func TestClassify_IgnoresTimeOfDay(t *testing.T) {
	// Dates built from timestamps compare by calendar day only.
	due := billing.DateOf(time.Date(2025, time.June, 1, 23, 59, 0, 0, time.UTC))
	today := billing.DateOf(time.Date(2025, time.June, 1, 0, 1, 0, 0, time.UTC))
	assert.Equal(t, billing.DueStatusDueToday, billing.Classify(due, billing.PaymentPending, today))
}

func TestBill_DueStatus(t *testing.T) {
	b := bill("b-1", "res-1", "u-1", "5000", day(2025, time.June, 1), billing.PaymentPending)
	assert.Equal(t, billing.DueStatusOverdue, b.DueStatus(day(2025, time.July, 1)))
}
