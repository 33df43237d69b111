/*
proration.go - Advance (multi-period) payment quotes

PURPOSE:
  Answers "how much does a resident pay to cover [start, end] in advance?"
  The minimum billable unit is one calendar month; there is no sub-month
  proration.

ALGORITHM:
  1. monthly_amount = FeeComposer.Compose(profile)
  2. months_covered = whole calendar months from start to end, plus one if
     a partial trailing month remains (CoverPartialMonth), never below 1
  3. total_amount = monthly_amount * months_covered
  4. breakdown.base_rent = base_rent * months_covered
     breakdown.additional_charges = total_amount - breakdown.base_rent

EXAMPLE:
  base_rent=5000, no add-ons, 2025-01-05 .. 2025-03-20
    Jan 05 -> Feb 05 -> Mar 05 are two whole months, Mar 05 -> Mar 20 is partial
    months_covered=3, total_amount=15000

COVERAGE POLICY:
  How the trailing partial month is counted is configurable because the
  rule is a policy decision, not arithmetic:
    CoverPartialMonth     partial trailing month bills as a full month (default)
    CoverWholeMonthsOnly  partial trailing month is dropped
  Both keep the one-month minimum.

SEE ALSO:
  - fee.go: monthly_amount
  - issue.go: materializing a quote as bills
*/
package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CoveragePolicy decides how a partial trailing month is billed.
type CoveragePolicy string

const (
	CoverPartialMonth    CoveragePolicy = "round_up"
	CoverWholeMonthsOnly CoveragePolicy = "whole_months"
)

// ParseCoveragePolicy accepts the configured names; empty means the default.
func ParseCoveragePolicy(s string) (CoveragePolicy, error) {
	switch CoveragePolicy(s) {
	case "", CoverPartialMonth:
		return CoverPartialMonth, nil
	case CoverWholeMonthsOnly:
		return CoverWholeMonthsOnly, nil
	}
	return "", fmt.Errorf("unknown coverage policy %q", s)
}

// Span is a closed advance range [Start, End].
type Span struct {
	Start Date
	End   Date
}

// Validate requires End strictly after Start.
func (s Span) Validate() error {
	if !s.End.After(s.Start) {
		return &InvalidRangeError{Start: s.Start, End: s.End}
	}
	return nil
}

// String returns a string representation of the span.
func (s Span) String() string {
	return "[" + s.Start.String() + ", " + s.End.String() + "]"
}

// WholeMonths counts full calendar months from Start that fit before End,
// and whether a partial month remains after them.
func (s Span) WholeMonths() (whole int, partial bool) {
	whole = (s.End.Year()-s.Start.Year())*12 + int(s.End.Month()-s.Start.Month())
	if whole < 0 {
		whole = 0
	}
	for whole > 0 && s.Start.AddMonths(whole).After(s.End) {
		whole--
	}
	return whole, s.Start.AddMonths(whole).Before(s.End)
}

// =============================================================================
// ADVANCE QUOTE - ephemeral, computed on demand
// =============================================================================

// AdvanceBreakdown splits a quote total into base rent and add-ons.
type AdvanceBreakdown struct {
	BaseRent          decimal.Decimal
	AdditionalCharges decimal.Decimal
}

// AdvanceQuote prices an advance payment. It is never persisted; the bills
// issued from it are the durable artifact.
type AdvanceQuote struct {
	UnitID        UnitID
	Span          Span
	MonthsCovered int
	MonthlyAmount decimal.Decimal
	TotalAmount   decimal.Decimal
	Breakdown     AdvanceBreakdown
}

// =============================================================================
// PRORATION ENGINE
// =============================================================================

// ProrationEngine computes advance quotes. It holds only configuration,
// so the same (profile, start, end) always yields the same quote.
type ProrationEngine struct {
	Fees     FeeComposer
	Coverage CoveragePolicy
}

// MonthsCovered returns the number of billable months in span under the
// engine's coverage policy. The span must already be valid.
func (pe ProrationEngine) MonthsCovered(span Span) int {
	whole, partial := span.WholeMonths()
	months := whole
	if partial && pe.Coverage != CoverWholeMonthsOnly {
		months++
	}
	if months < 1 {
		months = 1
	}
	return months
}

// Quote prices an advance payment for profile over [start, end].
func (pe ProrationEngine) Quote(profile UnitFeeProfile, start, end Date) (AdvanceQuote, error) {
	span := Span{Start: start, End: end}
	if err := span.Validate(); err != nil {
		return AdvanceQuote{}, err
	}

	fee, err := pe.Fees.Decompose(profile)
	if err != nil {
		return AdvanceQuote{}, err
	}

	months := pe.MonthsCovered(span)
	n := decimal.NewFromInt(int64(months))

	total := RoundMoney(fee.Total.Mul(n))
	base := RoundMoney(fee.BaseRent.Mul(n))

	return AdvanceQuote{
		UnitID:        profile.UnitID,
		Span:          span,
		MonthsCovered: months,
		MonthlyAmount: fee.Total,
		TotalAmount:   total,
		Breakdown: AdvanceBreakdown{
			BaseRent:          base,
			AdditionalCharges: total.Sub(base),
		},
	}, nil
}
