package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/billing-engine/billing"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	p := billing.Paginate(items, 1, 2)
	assert.Equal(t, 5, p.Count)
	assert.Equal(t, []int{1, 2}, p.Results)
	require.NotNil(t, p.Next)
	assert.Equal(t, 2, *p.Next)
	assert.Nil(t, p.Previous)

	p = billing.Paginate(items, 3, 2)
	assert.Equal(t, []int{5}, p.Results)
	assert.Nil(t, p.Next)
	require.NotNil(t, p.Previous)
	assert.Equal(t, 2, *p.Previous)

	p = billing.Paginate(items, 9, 2)
	assert.Empty(t, p.Results)
	assert.Nil(t, p.Next)
}

func TestPaginate_Defaults(t *testing.T) {
	items := make([]int, 45)
	p := billing.Paginate(items, 0, 0)
	assert.Len(t, p.Results, billing.DefaultPageSize)
	assert.Nil(t, p.Previous)
	require.NotNil(t, p.Next)
}

func TestSortBills(t *testing.T) {
	newBills := func() []billing.Bill {
		return []billing.Bill{
			bill("b-2", "res-1", "u-1", "300", day(2025, time.March, 1), billing.PaymentPending),
			bill("b-1", "res-1", "u-1", "100", day(2025, time.March, 1), billing.PaymentPending),
			bill("b-3", "res-1", "u-1", "200", day(2025, time.January, 1), billing.PaymentPending),
		}
	}
	ids := func(bills []billing.Bill) []billing.BillID {
		out := make([]billing.BillID, len(bills))
		for i, b := range bills {
			out[i] = b.ID
		}
		return out
	}

	bills := newBills()
	billing.SortBills(bills, "")
	assert.Equal(t, []billing.BillID{"b-3", "b-1", "b-2"}, ids(bills))

	bills = newBills()
	billing.SortBills(bills, billing.OrderDueDateDesc)
	assert.Equal(t, []billing.BillID{"b-1", "b-2", "b-3"}, ids(bills))

	bills = newBills()
	billing.SortBills(bills, billing.OrderAmountDueDesc)
	assert.Equal(t, []billing.BillID{"b-2", "b-3", "b-1"}, ids(bills))
}

func TestBillFilter_Matches(t *testing.T) {
	b := bill("bill-42", "res-1", "u-7", "100", day(2025, time.March, 1), billing.PaymentPending)
	today := day(2025, time.April, 1)

	assert.True(t, billing.BillFilter{}.Matches(b))
	assert.True(t, billing.BillFilter{UserID: "res-1", Year: 2025}.Matches(b))
	assert.False(t, billing.BillFilter{UserID: "res-2"}.Matches(b))
	assert.False(t, billing.BillFilter{UnitID: "u-8"}.Matches(b))
	assert.False(t, billing.BillFilter{Year: 2024}.Matches(b))

	assert.True(t, billing.BillFilter{DueStatus: billing.DueStatusOverdue, Today: today}.Matches(b))
	assert.False(t, billing.BillFilter{DueStatus: billing.DueStatusUpcoming, Today: today}.Matches(b))

	assert.True(t, billing.BillFilter{Search: "BILL-4"}.Matches(b))
	assert.True(t, billing.BillFilter{Search: "u-7"}.Matches(b))
	assert.False(t, billing.BillFilter{Search: "zzz"}.Matches(b))
}

func TestOrdering_Valid(t *testing.T) {
	assert.True(t, billing.Ordering("").Valid())
	assert.True(t, billing.OrderCreatedAtDesc.Valid())
	assert.False(t, billing.Ordering("name").Valid())
}
