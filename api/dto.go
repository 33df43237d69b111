/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY:
  Every amount leaves the API as a fixed two-decimal string ("13500.00")
  so clients never parse money through a float.

VALIDATION:
  Request types carry go-playground/validator tags. Handlers call
  h.validate.Struct before touching the engine; engine-level rules
  (negative rent, end before start) still come back as domain errors.

SEE ALSO:
  - handlers.go: Uses these types
  - billing/summary.go: YearlySummary, the largest response
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/billing-engine/billing"
)

// =============================================================================
// UNITS
// =============================================================================

// UnitDTO represents a unit directory record.
type UnitDTO struct {
	ID                 string  `json:"id"`
	UnitName           string  `json:"unit_name"`
	Building           string  `json:"building"`
	Label              string  `json:"label"`
	BaseRent           *string `json:"base_rent"`
	SecurityEnabled    bool    `json:"security_enabled"`
	AmenitiesEnabled   bool    `json:"amenities_enabled"`
	MaintenanceEnabled bool    `json:"maintenance_enabled"`
	MonthlyFee         *string `json:"monthly_fee,omitempty"`
}

// CreateUnitRequest is the request to create or replace a unit.
type CreateUnitRequest struct {
	ID                 string  `json:"id" validate:"required,max=64"`
	UnitName           string  `json:"unit_name" validate:"required,max=128"`
	Building           string  `json:"building" validate:"max=128"`
	BaseRent           *string `json:"base_rent" validate:"omitempty,numeric"`
	SecurityEnabled    bool    `json:"security_enabled"`
	AmenitiesEnabled   bool    `json:"amenities_enabled"`
	MaintenanceEnabled bool    `json:"maintenance_enabled"`
}

// =============================================================================
// QUOTES
// =============================================================================

// FeeQuoteRequest prices one period. Either UnitID names a stored unit, or
// the profile fields are given inline.
type FeeQuoteRequest struct {
	UnitID             string  `json:"unit_id" validate:"required_without=BaseRent"`
	BaseRent           *string `json:"base_rent" validate:"omitempty,numeric"`
	SecurityEnabled    bool    `json:"security_enabled"`
	AmenitiesEnabled   bool    `json:"amenities_enabled"`
	MaintenanceEnabled bool    `json:"maintenance_enabled"`
}

// FeeBreakdownDTO is the component view of a period fee.
type FeeBreakdownDTO struct {
	BaseRent    string `json:"base_rent"`
	Security    string `json:"security"`
	Amenities   string `json:"amenities"`
	Maintenance string `json:"maintenance"`
	Additional  string `json:"additional_charges"`
	Total       string `json:"total"`
}

// AdvanceQuoteRequest prices an advance payment for a stored unit.
type AdvanceQuoteRequest struct {
	UnitID    string `json:"unit_id" validate:"required"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// AdvanceQuoteDTO is an advance quote in API responses.
type AdvanceQuoteDTO struct {
	UnitID        string `json:"unit_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	MonthsCovered int    `json:"months_covered"`
	MonthlyAmount string `json:"monthly_amount"`
	TotalAmount   string `json:"total_amount"`
	Breakdown     struct {
		BaseRent          string `json:"base_rent"`
		AdditionalCharges string `json:"additional_charges"`
	} `json:"breakdown"`
}

// =============================================================================
// BILLS
// =============================================================================

// BillDTO represents a bill. DueStatus is computed for the request's today.
type BillDTO struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	UnitID        string `json:"unit_id"`
	Kind          string `json:"kind"`
	AmountDue     string `json:"amount_due"`
	MonthsCovered int    `json:"months_covered"`
	DueDate       string `json:"due_date"`
	PaymentStatus string `json:"payment_status"`
	DueStatus     string `json:"due_status"`
	CreatedAt     string `json:"created_at"`
}

// BillPageDTO is one page of a bill listing.
type BillPageDTO struct {
	Count    int       `json:"count"`
	Next     *int      `json:"next"`
	Previous *int      `json:"previous"`
	Results  []BillDTO `json:"results"`
}

// CreateBillRequest issues a regular bill priced from the unit's profile.
type CreateBillRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	UnitID  string `json:"unit_id" validate:"required"`
	DueDate string `json:"due_date" validate:"required,datetime=2006-01-02"`
}

// CreateAdvanceBillRequest issues bill(s) for an advance payment.
type CreateAdvanceBillRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	UnitID    string `json:"unit_id" validate:"required"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Split     bool   `json:"split"`
}

// AdvanceBillResponse returns the quote together with the issued bills.
type AdvanceBillResponse struct {
	Quote AdvanceQuoteDTO `json:"quote"`
	Bills []BillDTO       `json:"bills"`
}

// RecordPaymentRequest transitions a bill's payment status.
type RecordPaymentRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=pending paid rejected"`
}

// VerifyBillDTO reports whether a stored amount matches its pricing path.
type VerifyBillDTO struct {
	Bill     BillDTO `json:"bill"`
	Matches  bool    `json:"matches"`
	Expected string  `json:"expected"`
	Actual   string  `json:"actual"`
	Delta    string  `json:"delta"`
}

// =============================================================================
// SUMMARIES
// =============================================================================

// MonthlyBreakdownDTO is one calendar month of a resident-year.
type MonthlyBreakdownDTO struct {
	Month                string `json:"month"`
	MonthNumber          int    `json:"month_number"`
	Paid                 string `json:"paid"`
	Unpaid               string `json:"unpaid"`
	Total                string `json:"total"`
	ExpectedAmount       string `json:"expected_amount"`
	PercentageOfExpected int64  `json:"percentage_of_expected"`
	BillsCount           int    `json:"bills_count"`
}

// UnitBreakdownDTO is one unit of a resident-year.
type UnitBreakdownDTO struct {
	UnitID               string `json:"unit_id"`
	Label                string `json:"label"`
	Paid                 string `json:"paid"`
	Unpaid               string `json:"unpaid"`
	Total                string `json:"total"`
	ExpectedAmount       string `json:"expected_amount"`
	PercentageOfExpected int64  `json:"percentage_of_expected"`
	BillsCount           int    `json:"bills_count"`
}

// ChargeComponentDTO is an amount with its share of the total.
type ChargeComponentDTO struct {
	Amount     string `json:"amount"`
	Percentage int64  `json:"percentage"`
}

// AdditionalChargesDTO is the add-on share split by service.
type AdditionalChargesDTO struct {
	Amount      string             `json:"amount"`
	Percentage  int64              `json:"percentage"`
	Security    ChargeComponentDTO `json:"security"`
	Amenities   ChargeComponentDTO `json:"amenities"`
	Maintenance ChargeComponentDTO `json:"maintenance"`
}

// YearlySummaryDTO is the resident's yearly summary.
type YearlySummaryDTO struct {
	UserID              string `json:"user_id"`
	Year                int    `json:"year"`
	TotalPaid           string `json:"total_paid"`
	TotalUnpaid         string `json:"total_unpaid"`
	TotalAmount         string `json:"total_amount"`
	ExpectedYearlyTotal string `json:"expected_yearly_total"`
	CompletionRate      int64  `json:"completion_rate"`
	BillsCount          int    `json:"bills_count"`
	ChargeBreakdown     struct {
		BaseRent          ChargeComponentDTO   `json:"base_rent"`
		AdditionalCharges AdditionalChargesDTO `json:"additional_charges"`
	} `json:"charge_breakdown"`
	MonthlyBreakdown []MonthlyBreakdownDTO `json:"monthly_breakdown"`
	UnitBreakdown    []UnitBreakdownDTO    `json:"unit_breakdown"`
}

// OverdueGroupDTO is one resident's overdue position.
type OverdueGroupDTO struct {
	UserID         string   `json:"user_id"`
	TotalAmountDue string   `json:"total_amount_due"`
	Units          []string `json:"units"`
	MonthsDue      []string `json:"months_due"`
	BillsCount     int      `json:"bills_count"`
}

// OverdueResponse is the fleet-wide overdue report.
type OverdueResponse struct {
	Today          string            `json:"today"`
	TotalAmountDue string            `json:"total_amount_due"`
	Residents      int               `json:"residents"`
	Groups         []OverdueGroupDTO `json:"groups"`
}

// =============================================================================
// SCENARIOS & ERRORS
// =============================================================================

// ScenarioDTO describes a demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a demo data set.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// ErrorResponse is returned for all errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toUnitDTO(u billing.Unit, monthly *decimal.Decimal) UnitDTO {
	dto := UnitDTO{
		ID:                 string(u.ID),
		UnitName:           u.Label.UnitName,
		Building:           u.Label.Building,
		Label:              u.Label.String(),
		SecurityEnabled:    u.Profile.SecurityEnabled,
		AmenitiesEnabled:   u.Profile.AmenitiesEnabled,
		MaintenanceEnabled: u.Profile.MaintenanceEnabled,
	}
	if u.Profile.BaseRent.Valid {
		s := money(u.Profile.BaseRent.Decimal)
		dto.BaseRent = &s
	}
	if monthly != nil {
		s := money(*monthly)
		dto.MonthlyFee = &s
	}
	return dto
}

func toFeeBreakdownDTO(f billing.FeeBreakdown) FeeBreakdownDTO {
	return FeeBreakdownDTO{
		BaseRent:    money(f.BaseRent),
		Security:    money(f.Security),
		Amenities:   money(f.Amenities),
		Maintenance: money(f.Maintenance),
		Additional:  money(f.Additional),
		Total:       money(f.Total),
	}
}

func toAdvanceQuoteDTO(q billing.AdvanceQuote) AdvanceQuoteDTO {
	dto := AdvanceQuoteDTO{
		UnitID:        string(q.UnitID),
		StartDate:     q.Span.Start.String(),
		EndDate:       q.Span.End.String(),
		MonthsCovered: q.MonthsCovered,
		MonthlyAmount: money(q.MonthlyAmount),
		TotalAmount:   money(q.TotalAmount),
	}
	dto.Breakdown.BaseRent = money(q.Breakdown.BaseRent)
	dto.Breakdown.AdditionalCharges = money(q.Breakdown.AdditionalCharges)
	return dto
}

func toBillDTO(b billing.Bill, today billing.Date) BillDTO {
	return BillDTO{
		ID:            string(b.ID),
		UserID:        string(b.UserID),
		UnitID:        string(b.UnitID),
		Kind:          string(b.Kind),
		AmountDue:     money(b.AmountDue),
		MonthsCovered: b.MonthsCovered,
		DueDate:       b.DueDate.String(),
		PaymentStatus: string(b.PaymentStatus),
		DueStatus:     string(b.DueStatus(today)),
		CreatedAt:     b.CreatedAt.String(),
	}
}

func toBillDTOs(bills []billing.Bill, today billing.Date) []BillDTO {
	dtos := make([]BillDTO, len(bills))
	for i, b := range bills {
		dtos[i] = toBillDTO(b, today)
	}
	return dtos
}

func toMonthlyDTOs(entries []billing.MonthlyBreakdownEntry) []MonthlyBreakdownDTO {
	dtos := make([]MonthlyBreakdownDTO, len(entries))
	for i, e := range entries {
		dtos[i] = MonthlyBreakdownDTO{
			Month:                e.Month,
			MonthNumber:          e.MonthNumber,
			Paid:                 money(e.Paid),
			Unpaid:               money(e.Unpaid),
			Total:                money(e.Total),
			ExpectedAmount:       money(e.ExpectedAmount),
			PercentageOfExpected: e.PercentageOfExpected,
			BillsCount:           e.BillsCount,
		}
	}
	return dtos
}

func toComponentDTO(c billing.ChargeComponent) ChargeComponentDTO {
	return ChargeComponentDTO{Amount: money(c.Amount), Percentage: c.Percentage}
}

func toYearlySummaryDTO(s billing.YearlySummary) YearlySummaryDTO {
	dto := YearlySummaryDTO{
		UserID:              string(s.UserID),
		Year:                s.Year,
		TotalPaid:           money(s.TotalPaid),
		TotalUnpaid:         money(s.TotalUnpaid),
		TotalAmount:         money(s.TotalAmount),
		ExpectedYearlyTotal: money(s.ExpectedYearlyTotal),
		CompletionRate:      s.CompletionRate,
		BillsCount:          s.BillsCount,
		MonthlyBreakdown:    toMonthlyDTOs(s.Monthly),
		UnitBreakdown:       make([]UnitBreakdownDTO, len(s.Units)),
	}

	cb := s.ChargeBreakdown
	dto.ChargeBreakdown.BaseRent = toComponentDTO(cb.BaseRent)
	dto.ChargeBreakdown.AdditionalCharges = AdditionalChargesDTO{
		Amount:      money(cb.AdditionalCharges.Amount),
		Percentage:  cb.AdditionalCharges.Percentage,
		Security:    toComponentDTO(cb.AdditionalCharges.Security),
		Amenities:   toComponentDTO(cb.AdditionalCharges.Amenities),
		Maintenance: toComponentDTO(cb.AdditionalCharges.Maintenance),
	}

	for i, u := range s.Units {
		dto.UnitBreakdown[i] = UnitBreakdownDTO{
			UnitID:               string(u.UnitID),
			Label:                u.Label,
			Paid:                 money(u.Paid),
			Unpaid:               money(u.Unpaid),
			Total:                money(u.Total),
			ExpectedAmount:       money(u.ExpectedAmount),
			PercentageOfExpected: u.PercentageOfExpected,
			BillsCount:           u.BillsCount,
		}
	}
	return dto
}

func toOverdueResponse(today billing.Date, groups []billing.OverdueGroup) OverdueResponse {
	resp := OverdueResponse{
		Today:          today.String(),
		TotalAmountDue: money(billing.OverdueTotal(groups)),
		Residents:      len(groups),
		Groups:         make([]OverdueGroupDTO, len(groups)),
	}
	for i, g := range groups {
		resp.Groups[i] = OverdueGroupDTO{
			UserID:         string(g.UserID),
			TotalAmountDue: money(g.TotalAmountDue),
			Units:          g.Units,
			MonthsDue:      g.MonthsDue,
			BillsCount:     g.BillsCount,
		}
	}
	return resp
}
