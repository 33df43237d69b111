package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/billing-engine/billing"
)

func TestAggregateMonths_AlwaysTwelveEntries(t *testing.T) {
	entries := billing.AggregateMonths(nil, 2025)

	require.Len(t, entries, 12)
	for i, e := range entries {
		assert.Equal(t, i+1, e.MonthNumber)
		assert.Equal(t, time.Month(i+1).String(), e.Month)
		assert.True(t, e.Total.IsZero())
		assert.True(t, e.ExpectedAmount.IsZero())
		assert.Equal(t, int64(0), e.PercentageOfExpected)
		assert.Equal(t, 0, e.BillsCount)
	}
}

func TestAggregateMonths_BucketsByDueMonth(t *testing.T) {
	// GIVEN: two March bills (one paid), one July bill, one bill from another year
	bills := []billing.Bill{
		bill("b-1", "res-1", "u-1", "3000", day(2025, time.March, 1), billing.PaymentPaid),
		bill("b-2", "res-1", "u-1", "1000", day(2025, time.March, 20), billing.PaymentRejected),
		bill("b-3", "res-1", "u-1", "5000", day(2025, time.July, 1), billing.PaymentPending),
		bill("b-4", "res-1", "u-1", "9999", day(2024, time.March, 1), billing.PaymentPaid),
	}

	// WHEN
	entries := billing.AggregateMonths(bills, 2025)

	// THEN
	march := entries[2]
	assertAmount(t, "3000", march.Paid)
	assertAmount(t, "1000", march.Unpaid)
	assertAmount(t, "4000", march.Total)
	assertAmount(t, "4000", march.ExpectedAmount)
	assert.Equal(t, int64(75), march.PercentageOfExpected)
	assert.Equal(t, 2, march.BillsCount)

	july := entries[6]
	assertAmount(t, "5000", july.Unpaid)
	assert.Equal(t, int64(0), july.PercentageOfExpected)

	assert.Equal(t, 0, entries[0].BillsCount)
}

func TestAggregateMonths_PercentageRounds(t *testing.T) {
	bills := []billing.Bill{
		bill("b-1", "res-1", "u-1", "1", day(2025, time.May, 1), billing.PaymentPaid),
		bill("b-2", "res-1", "u-1", "2", day(2025, time.May, 2), billing.PaymentPending),
	}
	// 1/3 = 33.3%
	assert.Equal(t, int64(33), billing.AggregateMonths(bills, 2025)[4].PercentageOfExpected)

	bills = append(bills, bill("b-3", "res-1", "u-1", "5", day(2025, time.May, 3), billing.PaymentPaid))
	// 6/8 = 75%
	assert.Equal(t, int64(75), billing.AggregateMonths(bills, 2025)[4].PercentageOfExpected)
}

func TestAggregateMonths_ZeroAmountBills_NoDivisionError(t *testing.T) {
	bills := []billing.Bill{
		bill("b-1", "res-1", "u-1", "0", day(2025, time.May, 1), billing.PaymentPending),
	}
	entries := billing.AggregateMonths(bills, 2025)
	assert.Equal(t, 1, entries[4].BillsCount)
	assert.Equal(t, int64(0), entries[4].PercentageOfExpected)
}

func TestAggregateUnits_FirstAppearanceOrderAndLabels(t *testing.T) {
	bills := []billing.Bill{
		bill("b-1", "res-1", "u-2", "4000", day(2025, time.January, 1), billing.PaymentPaid),
		bill("b-2", "res-1", "u-1", "2000", day(2025, time.February, 1), billing.PaymentPending),
		bill("b-3", "res-1", "u-2", "4000", day(2025, time.March, 1), billing.PaymentPending),
	}
	labels := map[billing.UnitID]billing.UnitLabel{
		"u-2": {UnitName: "A-101", Building: "Tower A"},
	}

	entries := billing.AggregateUnits(bills, 2025, labels)

	require.Len(t, entries, 2)
	assert.Equal(t, billing.UnitID("u-2"), entries[0].UnitID)
	assert.Equal(t, "A-101 (Tower A)", entries[0].Label)
	assertAmount(t, "8000", entries[0].Total)
	assert.Equal(t, int64(50), entries[0].PercentageOfExpected)
	assert.Equal(t, 2, entries[0].BillsCount)

	assert.Equal(t, "u-1", entries[1].Label)
	assert.Equal(t, int64(0), entries[1].PercentageOfExpected)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, int64(0), billing.Percentage(dec("5"), dec("0")))
	assert.Equal(t, int64(0), billing.Percentage(dec("5"), dec("-3")))
	assert.Equal(t, int64(100), billing.Percentage(dec("7"), dec("7")))
	assert.Equal(t, int64(67), billing.Percentage(dec("2"), dec("3")))
	assert.Equal(t, int64(1), billing.Percentage(dec("1"), dec("200")))
}
