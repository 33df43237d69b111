package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/billing/store"
)

func testBill(id, user string, due billing.Date, status billing.PaymentStatus) billing.Bill {
	return billing.Bill{
		ID:            billing.BillID(id),
		UserID:        billing.UserID(user),
		UnitID:        "u-1",
		Kind:          billing.BillRegular,
		AmountDue:     decimal.RequireFromString("5000"),
		MonthsCovered: 1,
		DueDate:       due,
		PaymentStatus: status,
		CreatedAt:     due.AddDays(-7),
	}
}

func TestMemory_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	b := testBill("b-1", "res-1", billing.NewDate(2025, time.June, 1), billing.PaymentPending)
	require.NoError(t, m.Save(ctx, b))

	got, err := m.Get(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, b, got)

	_, err = m.Get(ctx, "nope")
	assert.ErrorIs(t, err, billing.ErrBillNotFound)
}

func TestMemory_Save_DuplicateRejectsWholeBatch(t *testing.T) {
	// GIVEN: b-1 already stored
	ctx := context.Background()
	m := store.NewMemory()
	due := billing.NewDate(2025, time.June, 1)
	require.NoError(t, m.Save(ctx, testBill("b-1", "res-1", due, billing.PaymentPending)))

	// WHEN: a batch containing a new ID and b-1 is saved
	err := m.Save(ctx,
		testBill("b-2", "res-1", due, billing.PaymentPending),
		testBill("b-1", "res-1", due, billing.PaymentPending))

	// THEN: nothing from the batch is stored
	assert.ErrorIs(t, err, billing.ErrDuplicateBill)
	assert.True(t, billing.IsConflict(err))
	_, err = m.Get(ctx, "b-2")
	assert.ErrorIs(t, err, billing.ErrBillNotFound)
}

func TestMemory_List_FilterAndPaginate(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	for i := 0; i < 30; i++ {
		due := billing.NewDate(2025, time.Month(i%12+1), 1)
		require.NoError(t, m.Save(ctx, testBill(fmt.Sprintf("b-%02d", i), "res-1", due, billing.PaymentPending)))
	}
	require.NoError(t, m.Save(ctx, testBill("other", "res-2", billing.NewDate(2025, time.January, 1), billing.PaymentPending)))

	page, err := m.List(ctx, billing.BillFilter{UserID: "res-1"})
	require.NoError(t, err)
	assert.Equal(t, 30, page.Count)
	assert.Len(t, page.Results, billing.DefaultPageSize)
	require.NotNil(t, page.Next)

	page, err = m.List(ctx, billing.BillFilter{UserID: "res-1", Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Results, 10)
	assert.Nil(t, page.Next)
}

func TestMemory_List_DueStatusIsDerived(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.Save(ctx,
		testBill("b-1", "res-1", billing.NewDate(2025, time.May, 1), billing.PaymentPending),
		testBill("b-2", "res-1", billing.NewDate(2025, time.July, 1), billing.PaymentPending),
	))

	filter := billing.BillFilter{DueStatus: billing.DueStatusOverdue, Today: billing.NewDate(2025, time.June, 1)}
	page, err := m.List(ctx, filter)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, billing.BillID("b-1"), page.Results[0].ID)

	// Same data, a later today
	filter.Today = billing.NewDate(2025, time.August, 1)
	page, err = m.List(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count)
}

func TestMemory_RecordPaymentStatus(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.Save(ctx, testBill("b-1", "res-1", billing.NewDate(2025, time.May, 1), billing.PaymentPending)))

	b, err := m.RecordPaymentStatus(ctx, "b-1", billing.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, billing.PaymentPaid, b.PaymentStatus)
	assert.Equal(t, billing.DueStatusPaid, b.DueStatus(billing.NewDate(2030, time.January, 1)))

	_, err = m.RecordPaymentStatus(ctx, "b-1", "refunded")
	assert.ErrorIs(t, err, billing.ErrInvalidPaymentStatus)

	_, err = m.RecordPaymentStatus(ctx, "b-404", billing.PaymentPaid)
	assert.ErrorIs(t, err, billing.ErrBillNotFound)
}

func TestMemory_UnitDirectory(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.SaveUnit(ctx, billing.Unit{
		ID:      "u-1",
		Label:   billing.UnitLabel{UnitName: "A-101", Building: "Tower A"},
		Profile: billing.NewUnitFeeProfile("", decimal.RequireFromString("10000"), true, false, false),
	}))

	p, err := m.Profile(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, billing.UnitID("u-1"), p.UnitID)

	l, err := m.Label(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "A-101 (Tower A)", l.String())

	_, err = m.Profile(ctx, "u-2")
	assert.ErrorIs(t, err, billing.ErrUnknownUnit)
}

func TestMemory_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	due := billing.NewDate(2025, time.June, 1)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = m.Save(ctx, testBill(fmt.Sprintf("b-%d", i), "res-1", due, billing.PaymentPending))
		}(i)
	}
	wg.Wait()

	page, err := m.List(ctx, billing.BillFilter{PageSize: 100})
	require.NoError(t, err)
	assert.Equal(t, 50, page.Count)
}
