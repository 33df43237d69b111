package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ChargeRates are the flat monthly add-on charges. Loaded once at process
// start and passed to NewEngine; never mutated afterwards. Changing them
// does not reprice bills that were already issued.
type ChargeRates struct {
	Amenities   decimal.Decimal
	Security    decimal.Decimal
	Maintenance decimal.Decimal
}

// DefaultChargeRates returns the standard portal rates.
func DefaultChargeRates() ChargeRates {
	return ChargeRates{
		Amenities:   decimal.NewFromInt(2500),
		Security:    decimal.NewFromInt(2000),
		Maintenance: decimal.NewFromInt(1500),
	}
}

// Validate rejects negative rates.
func (r ChargeRates) Validate() error {
	rates := []struct {
		name  string
		value decimal.Decimal
	}{
		{"amenities", r.Amenities},
		{"security", r.Security},
		{"maintenance", r.Maintenance},
	}
	for _, rate := range rates {
		if rate.value.IsNegative() {
			return fmt.Errorf("%w: %s rate %s is negative", ErrInvalidRates, rate.name, rate.value)
		}
	}
	return nil
}
