/*
Package billing provides the billing and reconciliation engine.

PURPOSE:
  This package decides how much a unit owes each period, how an advance
  (multi-period) payment is prorated, what due state a bill is in at any
  instant, and how raw bill records roll up into percentage-based summaries.
  Everything here is pure: no I/O, no clocks, no shared mutable state.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money helpers: decimal.Decimal with a single rounding policy
  - UnitFeeProfile: base rent plus the three service flags of a unit
  - Bill: an issued charge for a resident/unit with a due date
  - Identifiers: type-safe user/unit/bill IDs

DESIGN PRINCIPLES:
  1. Precision: all money is decimal.Decimal, never float64
  2. Determinism: "today" is always an explicit argument
  3. Immutability: bills are values; only the payment collaborator
     transitions payment_status, and it does so outside this package

USAGE:
  engine := billing.NewEngine(billing.DefaultChargeRates(), billing.CoverPartialMonth)
  amount, err := engine.Fees.Compose(profile)

SEE ALSO:
  - fee.go: FeeComposer
  - status.go: due status classification
  - proration.go: advance quotes
  - aggregate.go, summary.go, overdue.go: rollups
*/
package billing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - decimal amounts with one rounding policy
// =============================================================================

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds to 2 fractional digits, half-up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percentage returns round(part / whole * 100) as an integer.
// A non-positive whole yields 0 instead of a division error.
func Percentage(part, whole decimal.Decimal) int64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Mul(hundred).Div(whole).Round(0).IntPart()
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string
type UnitID string
type BillID string

// =============================================================================
// UNIT FEE PROFILE - owned by the unit assignment, read-only here
// =============================================================================

// UnitFeeProfile is the pricing input for one unit assignment.
// BaseRent is nullable so a missing rent is distinguishable from zero.
type UnitFeeProfile struct {
	UnitID             UnitID
	BaseRent           decimal.NullDecimal
	SecurityEnabled    bool
	AmenitiesEnabled   bool
	MaintenanceEnabled bool
}

// NewUnitFeeProfile builds a profile with a present base rent.
func NewUnitFeeProfile(unitID UnitID, baseRent decimal.Decimal, security, amenities, maintenance bool) UnitFeeProfile {
	return UnitFeeProfile{
		UnitID:             unitID,
		BaseRent:           decimal.NewNullDecimal(baseRent),
		SecurityEnabled:    security,
		AmenitiesEnabled:   amenities,
		MaintenanceEnabled: maintenance,
	}
}

// UnitLabel is the human-readable identity of a unit.
type UnitLabel struct {
	UnitName string
	Building string
}

// String renders "{unit_name} ({building})".
func (l UnitLabel) String() string {
	if l.Building == "" {
		return l.UnitName
	}
	return l.UnitName + " (" + l.Building + ")"
}

// Unit is a unit-directory record: identity plus pricing.
type Unit struct {
	ID      UnitID
	Label   UnitLabel
	Profile UnitFeeProfile
}

// =============================================================================
// BILL
// =============================================================================

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRejected PaymentStatus = "rejected"
)

// Valid reports whether s is one of the known payment states.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentRejected:
		return true
	}
	return false
}

// BillKind records which pricing path produced the amount.
type BillKind string

const (
	BillRegular BillKind = "regular" // priced by FeeComposer
	BillAdvance BillKind = "advance" // priced by ProrationEngine
)

// Bill is an issued charge. AmountDue is fixed at issuance; only
// PaymentStatus changes afterwards, and never inside this package.
type Bill struct {
	ID            BillID
	UserID        UserID
	UnitID        UnitID
	Kind          BillKind
	AmountDue     decimal.Decimal
	MonthsCovered int
	DueDate       Date
	PaymentStatus PaymentStatus
	CreatedAt     Date
}

// IsPaid reports whether the bill has been settled.
func (b Bill) IsPaid() bool { return b.PaymentStatus == PaymentPaid }

// DueStatus classifies the bill relative to today.
func (b Bill) DueStatus(today Date) DueStatus {
	return Classify(b.DueDate, b.PaymentStatus, today)
}

// coveredMonths is MonthsCovered with the regular-bill default applied.
func (b Bill) coveredMonths() int {
	if b.MonthsCovered < 1 {
		return 1
	}
	return b.MonthsCovered
}
