/*
aggregate.go - Monthly and per-unit rollups of a resident's bills

PURPOSE:
  Folds one resident's bills for one calendar year into buckets with paid,
  unpaid, expected and percentage-of-expected figures. Bills are bucketed
  by the month (or unit) of their due date.

BUCKET RULES:
  paid                   = sum(amount_due where payment_status == paid)
  unpaid                 = sum(amount_due where payment_status != paid)
  total                  = paid + unpaid
  expected_amount        = total, or 0 when the bucket has no bills
  percentage_of_expected = round(paid / expected_amount * 100), 0 when expected is 0

  A month without bills still produces an entry with every field zero: a
  resident without a unit for part of the year is not charged for it.

SEE ALSO:
  - summary.go: consumes these buckets
  - types.go: Percentage, the shared rounding policy
*/
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BUCKETS
// =============================================================================

// MonthlyBreakdownEntry is one calendar month of a resident-year.
type MonthlyBreakdownEntry struct {
	Month                string
	MonthNumber          int
	Paid                 decimal.Decimal
	Unpaid               decimal.Decimal
	Total                decimal.Decimal
	ExpectedAmount       decimal.Decimal
	PercentageOfExpected int64
	BillsCount           int
}

// UnitBreakdownEntry is the per-unit analogue of MonthlyBreakdownEntry.
type UnitBreakdownEntry struct {
	UnitID               UnitID
	Label                string
	Paid                 decimal.Decimal
	Unpaid               decimal.Decimal
	Total                decimal.Decimal
	ExpectedAmount       decimal.Decimal
	PercentageOfExpected int64
	BillsCount           int
}

type bucket struct {
	paid   decimal.Decimal
	unpaid decimal.Decimal
	count  int
}

func (b *bucket) add(bill Bill) {
	if bill.IsPaid() {
		b.paid = b.paid.Add(bill.AmountDue)
	} else {
		b.unpaid = b.unpaid.Add(bill.AmountDue)
	}
	b.count++
}

func (b bucket) total() decimal.Decimal { return b.paid.Add(b.unpaid) }

func (b bucket) expected() decimal.Decimal {
	if b.count == 0 {
		return decimal.Zero
	}
	return b.total()
}

// =============================================================================
// PERIOD AGGREGATOR
// =============================================================================

// BillsInYear keeps bills whose due date falls in year, preserving order.
func BillsInYear(bills []Bill, year int) []Bill {
	var out []Bill
	for _, b := range bills {
		if b.DueDate.Year() == year {
			out = append(out, b)
		}
	}
	return out
}

// AggregateMonths returns exactly 12 entries, January first.
func AggregateMonths(bills []Bill, year int) []MonthlyBreakdownEntry {
	var buckets [12]bucket
	for _, b := range BillsInYear(bills, year) {
		buckets[b.DueDate.Month()-1].add(b)
	}

	entries := make([]MonthlyBreakdownEntry, 12)
	for i, bk := range buckets {
		expected := bk.expected()
		entries[i] = MonthlyBreakdownEntry{
			Month:                time.Month(i + 1).String(),
			MonthNumber:          i + 1,
			Paid:                 bk.paid,
			Unpaid:               bk.unpaid,
			Total:                bk.total(),
			ExpectedAmount:       expected,
			PercentageOfExpected: Percentage(bk.paid, expected),
			BillsCount:           bk.count,
		}
	}
	return entries
}

// AggregateUnits buckets the year's bills by unit, in order of first
// appearance. labels is optional; a unit without a label keeps its ID.
func AggregateUnits(bills []Bill, year int, labels map[UnitID]UnitLabel) []UnitBreakdownEntry {
	var order []UnitID
	buckets := make(map[UnitID]*bucket)
	for _, b := range BillsInYear(bills, year) {
		bk, ok := buckets[b.UnitID]
		if !ok {
			bk = &bucket{}
			buckets[b.UnitID] = bk
			order = append(order, b.UnitID)
		}
		bk.add(b)
	}

	entries := make([]UnitBreakdownEntry, 0, len(order))
	for _, id := range order {
		bk := buckets[id]
		label := string(id)
		if l, ok := labels[id]; ok {
			label = l.String()
		}
		expected := bk.expected()
		entries = append(entries, UnitBreakdownEntry{
			UnitID:               id,
			Label:                label,
			Paid:                 bk.paid,
			Unpaid:               bk.unpaid,
			Total:                bk.total(),
			ExpectedAmount:       expected,
			PercentageOfExpected: Percentage(bk.paid, expected),
			BillsCount:           bk.count,
		})
	}
	return entries
}
