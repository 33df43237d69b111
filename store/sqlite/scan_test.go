package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/billing-engine/billing"
)

func TestScanBill_CorruptCreatedAt(t *testing.T) {
	// GIVEN: a stored bill whose created_at was overwritten with garbage
	ctx := context.Background()
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	due := billing.NewDate(2025, time.June, 1)
	require.NoError(t, s.Save(ctx, billing.Bill{
		ID:            "b-1",
		UserID:        "res-1",
		UnitID:        "u-1",
		Kind:          billing.BillRegular,
		AmountDue:     decimal.RequireFromString("13500"),
		MonthsCovered: 1,
		DueDate:       due,
		PaymentStatus: billing.PaymentPending,
		CreatedAt:     due.AddDays(-7),
	}))
	_, err = s.db.ExecContext(ctx, `UPDATE bills SET created_at = 'not-a-date' WHERE id = 'b-1'`)
	require.NoError(t, err)

	// WHEN
	_, err = s.Get(ctx, "b-1")

	// THEN: the read fails instead of returning a zero creation date
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created_at")
}
