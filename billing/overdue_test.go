package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/billing-engine/billing"
)

var overdueLabels = map[billing.UnitID]billing.UnitLabel{
	"u-1": {UnitName: "A-101", Building: "Tower A"},
	"u-2": {UnitName: "B-204", Building: "Tower B"},
}

func TestGroupOverdue_OnlyResidentsWithOverdueBills(t *testing.T) {
	// GIVEN: A has one overdue bill, B has only a paid and an upcoming bill
	today := day(2025, time.June, 15)
	bills := []billing.Bill{
		bill("b-1", "res-A", "u-1", "5000", day(2025, time.June, 1), billing.PaymentPending),
		bill("b-2", "res-B", "u-2", "3000", day(2025, time.June, 1), billing.PaymentPaid),
		bill("b-3", "res-B", "u-2", "3000", day(2025, time.July, 1), billing.PaymentPending),
	}

	// WHEN
	groups, err := billing.GroupOverdue(bills, today, overdueLabels)

	// THEN: exactly one group, for A
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, billing.UserID("res-A"), groups[0].UserID)
	assertAmount(t, "5000", groups[0].TotalAmountDue)
	assert.Equal(t, []string{"A-101 (Tower A)"}, groups[0].Units)
	assert.Equal(t, []string{"June 2025"}, groups[0].MonthsDue)
	assert.Equal(t, 1, groups[0].BillsCount)
}

func TestGroupOverdue_OneGroupAcrossUnits_Deduplicated(t *testing.T) {
	today := day(2025, time.August, 1)
	bills := []billing.Bill{
		bill("b-1", "res-A", "u-1", "5000", day(2025, time.May, 1), billing.PaymentPending),
		bill("b-2", "res-A", "u-2", "3000", day(2025, time.May, 1), billing.PaymentRejected),
		bill("b-3", "res-A", "u-1", "5000", day(2025, time.June, 1), billing.PaymentPending),
		bill("b-4", "res-A", "u-1", "5000", day(2025, time.July, 1), billing.PaymentPaid),
	}

	groups, err := billing.GroupOverdue(bills, today, overdueLabels)

	require.NoError(t, err)
	require.Len(t, groups, 1)
	g := groups[0]
	assertAmount(t, "13000", g.TotalAmountDue)
	assert.Equal(t, 3, g.BillsCount)
	assert.Equal(t, []string{"A-101 (Tower A)", "B-204 (Tower B)"}, g.Units)
	assert.Equal(t, []string{"May 2025", "June 2025"}, g.MonthsDue)
}

func TestGroupOverdue_DueTodayIsNotOverdue(t *testing.T) {
	today := day(2025, time.June, 1)
	bills := []billing.Bill{
		bill("b-1", "res-A", "u-1", "5000", today, billing.PaymentPending),
	}
	groups, err := billing.GroupOverdue(bills, today, overdueLabels)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestGroupOverdue_FirstAppearanceOrder(t *testing.T) {
	today := day(2025, time.December, 1)
	bills := []billing.Bill{
		bill("b-1", "res-B", "u-2", "1", day(2025, time.March, 1), billing.PaymentPending),
		bill("b-2", "res-A", "u-1", "1", day(2025, time.January, 1), billing.PaymentPending),
		bill("b-3", "res-B", "u-2", "1", day(2025, time.April, 1), billing.PaymentPending),
	}
	groups, err := billing.GroupOverdue(bills, today, overdueLabels)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, billing.UserID("res-B"), groups[0].UserID)
	assert.Equal(t, billing.UserID("res-A"), groups[1].UserID)
	assertAmount(t, "3", billing.OverdueTotal(groups))
}

func TestGroupOverdue_MissingLabel_UnknownUnit(t *testing.T) {
	today := day(2025, time.June, 15)
	bills := []billing.Bill{
		bill("b-1", "res-A", "u-ghost", "5000", day(2025, time.June, 1), billing.PaymentPending),
	}
	_, err := billing.GroupOverdue(bills, today, overdueLabels)
	assert.ErrorIs(t, err, billing.ErrUnknownUnit)
}

func TestGroupOverdue_NoBills(t *testing.T) {
	groups, err := billing.GroupOverdue(nil, day(2025, time.June, 15), nil)
	require.NoError(t, err)
	assert.Empty(t, groups)
	assert.True(t, billing.OverdueTotal(groups).IsZero())
}
