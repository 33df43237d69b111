package billing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// FEE COMPOSER - amount due for one period
// =============================================================================

// FeeComposer prices a single billing period from a unit's fee profile.
//
//	amount_due = base_rent
//	           + (security    ? rates.Security    : 0)
//	           + (amenities   ? rates.Amenities   : 0)
//	           + (maintenance ? rates.Maintenance : 0)
type FeeComposer struct {
	Rates ChargeRates
}

// FeeBreakdown is the per-component decomposition of one period's charge.
type FeeBreakdown struct {
	BaseRent    decimal.Decimal
	Security    decimal.Decimal
	Amenities   decimal.Decimal
	Maintenance decimal.Decimal
	Additional  decimal.Decimal // Security + Amenities + Maintenance
	Total       decimal.Decimal // rounded to cents
}

// Decompose returns every component of the period charge.
func (fc FeeComposer) Decompose(profile UnitFeeProfile) (FeeBreakdown, error) {
	if !profile.BaseRent.Valid {
		return FeeBreakdown{}, &InvalidFeeProfileError{UnitID: profile.UnitID, Reason: "base rent is missing"}
	}
	base := profile.BaseRent.Decimal
	if base.IsNegative() {
		return FeeBreakdown{}, &InvalidFeeProfileError{UnitID: profile.UnitID, Reason: "base rent " + base.String() + " is negative"}
	}

	// Components stay exact; only the sum is rounded.
	b := FeeBreakdown{
		BaseRent:    base,
		Security:    decimal.Zero,
		Amenities:   decimal.Zero,
		Maintenance: decimal.Zero,
	}
	if profile.SecurityEnabled {
		b.Security = fc.Rates.Security
	}
	if profile.AmenitiesEnabled {
		b.Amenities = fc.Rates.Amenities
	}
	if profile.MaintenanceEnabled {
		b.Maintenance = fc.Rates.Maintenance
	}
	b.Additional = b.Security.Add(b.Amenities).Add(b.Maintenance)
	b.Total = RoundMoney(b.BaseRent.Add(b.Additional))
	return b, nil
}

// Compose returns the amount due for one period.
func (fc FeeComposer) Compose(profile UnitFeeProfile) (decimal.Decimal, error) {
	b, err := fc.Decompose(profile)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Total, nil
}
