/*
summary.go - Yearly summary for one resident

PURPOSE:
  The final rollup consumed by dashboards and reports: totals, completion
  against what the resident was expected to pay, and a charge-type
  breakdown of where the money went.

EXPECTED TOTAL:
  A resident who occupied a unit for N months expects N months of charges,
  not 12. Each bill covers MonthsCovered consecutive months from its due
  month; every distinct (month in year, unit) pair contributes that unit's
  monthly amount exactly once.

CHARGE BREAKDOWN:
  base_rent.amount          = sum(profile.base_rent * months) over bills
  additional_charges.amount = total_amount - base_rent.amount
  security/amenities/maintenance.amount = flag ? rate * months_billed : 0
  every percentage          = round(component / total_amount * 100)

  Base rent comes from the unit's fee decomposition, never from splitting
  amount_due. Percentages are rounded per component and are NOT
  redistributed, so they need not sum to exactly 100.

SEE ALSO:
  - aggregate.go: monthly and per-unit buckets
  - fee.go: Decompose
*/
package billing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// SUMMARY TYPES
// =============================================================================

// ChargeComponent is an amount with its share of the yearly total.
type ChargeComponent struct {
	Amount     decimal.Decimal
	Percentage int64
}

// AdditionalCharges is the add-on share, split by service.
type AdditionalCharges struct {
	ChargeComponent
	Security    ChargeComponent
	Amenities   ChargeComponent
	Maintenance ChargeComponent
}

// ChargeBreakdown decomposes the yearly total by charge type.
type ChargeBreakdown struct {
	BaseRent          ChargeComponent
	AdditionalCharges AdditionalCharges
}

// YearlySummary aggregates every bill of one resident in one year.
type YearlySummary struct {
	UserID              UserID
	Year                int
	TotalPaid           decimal.Decimal
	TotalUnpaid         decimal.Decimal
	TotalAmount         decimal.Decimal
	ExpectedYearlyTotal decimal.Decimal
	CompletionRate      int64
	BillsCount          int
	ChargeBreakdown     ChargeBreakdown
	Monthly             []MonthlyBreakdownEntry
	Units               []UnitBreakdownEntry
}

// SummaryInput carries the resident's bills and the directory data they need.
type SummaryInput struct {
	UserID   UserID
	Year     int
	Bills    []Bill
	Profiles map[UnitID]UnitFeeProfile
	Labels   map[UnitID]UnitLabel
}

// =============================================================================
// BUILDER
// =============================================================================

type unitMonth struct {
	unit  UnitID
	month MonthKey
}

// BuildYearlySummary rolls the resident's bills for in.Year into a summary.
// A bill whose unit has no profile fails with UnknownUnit.
func (e *Engine) BuildYearlySummary(in SummaryInput) (YearlySummary, error) {
	bills := BillsInYear(in.Bills, in.Year)

	var (
		totals       bucket
		baseRent     = decimal.Zero
		expected     = decimal.Zero
		monthsBilled = make(map[UnitID]int64)
		seen         = make(map[unitMonth]bool)
		fees         = make(map[UnitID]FeeBreakdown)
		unitOrder    []UnitID
	)

	for _, b := range bills {
		fee, ok := fees[b.UnitID]
		if !ok {
			profile, found := in.Profiles[b.UnitID]
			if !found {
				return YearlySummary{}, &UnknownUnitError{UnitID: b.UnitID}
			}
			if profile.UnitID == "" {
				profile.UnitID = b.UnitID
			}
			var err error
			if fee, err = e.Fees.Decompose(profile); err != nil {
				return YearlySummary{}, err
			}
			fees[b.UnitID] = fee
			unitOrder = append(unitOrder, b.UnitID)
		}

		totals.add(b)
		months := b.coveredMonths()
		monthsBilled[b.UnitID] += int64(months)
		baseRent = baseRent.Add(fee.BaseRent.Mul(decimal.NewFromInt(int64(months))))

		m := b.DueDate.MonthKey()
		for i := 0; i < months; i, m = i+1, m.Next() {
			if m.Year != in.Year {
				continue
			}
			k := unitMonth{unit: b.UnitID, month: m}
			if seen[k] {
				continue
			}
			seen[k] = true
			expected = expected.Add(fee.Total)
		}
	}

	total := totals.total()

	var security, amenities, maintenance = decimal.Zero, decimal.Zero, decimal.Zero
	for _, id := range unitOrder {
		fee := fees[id]
		n := decimal.NewFromInt(monthsBilled[id])
		security = security.Add(fee.Security.Mul(n))
		amenities = amenities.Add(fee.Amenities.Mul(n))
		maintenance = maintenance.Add(fee.Maintenance.Mul(n))
	}
	baseRent = RoundMoney(baseRent)
	additional := total.Sub(baseRent)

	return YearlySummary{
		UserID:              in.UserID,
		Year:                in.Year,
		TotalPaid:           totals.paid,
		TotalUnpaid:         totals.unpaid,
		TotalAmount:         total,
		ExpectedYearlyTotal: expected,
		CompletionRate:      Percentage(totals.paid, expected),
		BillsCount:          totals.count,
		ChargeBreakdown: ChargeBreakdown{
			BaseRent: component(baseRent, total),
			AdditionalCharges: AdditionalCharges{
				ChargeComponent: component(additional, total),
				Security:        component(security, total),
				Amenities:       component(amenities, total),
				Maintenance:     component(maintenance, total),
			},
		},
		Monthly: AggregateMonths(bills, in.Year),
		Units:   AggregateUnits(bills, in.Year, in.Labels),
	}, nil
}

func component(amount, total decimal.Decimal) ChargeComponent {
	amount = RoundMoney(amount)
	return ChargeComponent{Amount: amount, Percentage: Percentage(amount, total)}
}
