package billing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/warp/billing-engine/billing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(year int, month time.Month, d int) billing.Date {
	return billing.NewDate(year, month, d)
}

func newEngine() *billing.Engine {
	return billing.NewEngine(billing.DefaultChargeRates(), billing.CoverPartialMonth)
}

func profile(unit string, baseRent string, security, amenities, maintenance bool) billing.UnitFeeProfile {
	return billing.NewUnitFeeProfile(billing.UnitID(unit), dec(baseRent), security, amenities, maintenance)
}

func bill(id, user, unit, amount string, due billing.Date, status billing.PaymentStatus) billing.Bill {
	return billing.Bill{
		ID:            billing.BillID(id),
		UserID:        billing.UserID(user),
		UnitID:        billing.UnitID(unit),
		Kind:          billing.BillRegular,
		AmountDue:     dec(amount),
		MonthsCovered: 1,
		DueDate:       due,
		PaymentStatus: status,
		CreatedAt:     due.AddDays(-7),
	}
}

// assertAmount compares decimals by value, ignoring exponent differences.
func assertAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	if !dec(want).Equal(got) {
		assert.Fail(t, "amount mismatch: want "+want+", got "+got.String(), msgAndArgs...)
	}
}
