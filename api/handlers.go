/*
handlers.go - HTTP API handlers for the billing engine

PURPOSE:
  Exposes the billing engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the engine and the Reconciler.

ENDPOINTS:
  Units:
    GET    /api/units                      List units with their monthly fee
    POST   /api/units                      Create or replace a unit
    GET    /api/units/{id}                 Get one unit

  Quotes (never persisted):
    POST   /api/quotes/fee                 Period fee breakdown
    POST   /api/quotes/advance             Advance payment quote

  Bills:
    GET    /api/bills                      Filtered, ordered, paginated listing
    POST   /api/bills                      Issue a regular bill
    POST   /api/bills/advance              Issue advance bill(s)
    GET    /api/bills/{id}                 Get one bill
    POST   /api/bills/{id}/payment         Record a payment status
    GET    /api/bills/{id}/verify          Compare amount_due with its pricing path

  Reports:
    GET    /api/residents/{id}/summary     Yearly summary (?year=)
    GET    /api/residents/{id}/monthly     Monthly breakdown (?year=)
    GET    /api/overdue                    Overdue groups (?today=)

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: SQLite, acting as bill repository, unit directory and payment recorder
  - Engine: pricing and rollups, built once from configured rates
  - Reconciler: repository-draining glue for reports
  - Now: clock used only to default "today" at the API boundary

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, invalid fee profile or range
  - 404: Unknown unit, bill not found
  - 409: Duplicate bill
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      *sqlite.Store
	Engine     *billing.Engine
	Reconciler *billing.Reconciler
	Metrics    *Metrics
	Now        func() time.Time

	validate *validator.Validate

	// Track currently loaded scenario
	scenarioMu      sync.RWMutex
	currentScenario string
}

// NewHandler creates a new handler with the given store and engine.
func NewHandler(store *sqlite.Store, engine *billing.Engine, metrics *Metrics) *Handler {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Handler{
		Store:  store,
		Engine: engine,
		Reconciler: &billing.Reconciler{
			Bills:  store,
			Units:  store,
			Engine: engine,
		},
		Metrics:  metrics,
		Now:      time.Now,
		validate: validator.New(),
	}
}

func (h *Handler) today() billing.Date {
	return billing.DateOf(h.Now().UTC())
}

// =============================================================================
// UNIT HANDLERS
// =============================================================================

// ListUnits returns all units with their composed monthly fee.
func (h *Handler) ListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.Store.ListUnits(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list units", err)
		return
	}

	dtos := make([]UnitDTO, len(units))
	for i, u := range units {
		dtos[i] = h.unitDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetUnit returns a single unit.
func (h *Handler) GetUnit(w http.ResponseWriter, r *http.Request) {
	id := billing.UnitID(chi.URLParam(r, "id"))

	u, err := h.Store.Unit(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get unit", err)
		return
	}
	writeJSON(w, http.StatusOK, h.unitDTO(u))
}

// CreateUnit creates or replaces a unit.
func (h *Handler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	var req CreateUnitRequest
	if !h.decode(w, r, &req) {
		return
	}

	u := billing.Unit{
		ID:    billing.UnitID(req.ID),
		Label: billing.UnitLabel{UnitName: req.UnitName, Building: req.Building},
		Profile: billing.UnitFeeProfile{
			UnitID:             billing.UnitID(req.ID),
			SecurityEnabled:    req.SecurityEnabled,
			AmenitiesEnabled:   req.AmenitiesEnabled,
			MaintenanceEnabled: req.MaintenanceEnabled,
		},
	}
	if req.BaseRent != nil {
		rent, err := decimal.NewFromString(*req.BaseRent)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid base_rent", err)
			return
		}
		u.Profile.BaseRent = decimal.NewNullDecimal(rent)

		// A present rent must be priceable; a missing one is stored as missing.
		if _, err := h.Engine.Fees.Decompose(u.Profile); err != nil {
			writeDomainError(w, "Invalid fee profile", err)
			return
		}
	}

	if err := h.Store.SaveUnit(r.Context(), u); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save unit", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.unitDTO(u))
}

func (h *Handler) unitDTO(u billing.Unit) UnitDTO {
	if monthly, err := h.Engine.Fees.Compose(u.Profile); err == nil {
		return toUnitDTO(u, &monthly)
	}
	return toUnitDTO(u, nil)
}

// =============================================================================
// QUOTE HANDLERS
// =============================================================================

// QuoteFee returns the period fee breakdown for a stored or inline profile.
func (h *Handler) QuoteFee(w http.ResponseWriter, r *http.Request) {
	var req FeeQuoteRequest
	if !h.decode(w, r, &req) {
		return
	}

	var profile billing.UnitFeeProfile
	if req.UnitID != "" {
		p, err := h.Store.Profile(r.Context(), billing.UnitID(req.UnitID))
		if err != nil {
			writeDomainError(w, "Failed to resolve unit", err)
			return
		}
		profile = p
	} else {
		rent, err := decimal.NewFromString(*req.BaseRent)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid base_rent", err)
			return
		}
		profile = billing.NewUnitFeeProfile("", rent, req.SecurityEnabled, req.AmenitiesEnabled, req.MaintenanceEnabled)
	}

	fee, err := h.Engine.Fees.Decompose(profile)
	if err != nil {
		writeDomainError(w, "Failed to compose fee", err)
		return
	}
	writeJSON(w, http.StatusOK, toFeeBreakdownDTO(fee))
}

// QuoteAdvance prices an advance payment without issuing anything.
func (h *Handler) QuoteAdvance(w http.ResponseWriter, r *http.Request) {
	var req AdvanceQuoteRequest
	if !h.decode(w, r, &req) {
		return
	}
	start, end, ok := parseSpan(w, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	q, err := h.Reconciler.QuoteAdvance(r.Context(), billing.UnitID(req.UnitID), start, end)
	if err != nil {
		writeDomainError(w, "Failed to quote advance", err)
		return
	}
	writeJSON(w, http.StatusOK, toAdvanceQuoteDTO(q))
}

// =============================================================================
// BILL HANDLERS
// =============================================================================

// ListBills returns one page of bills.
//
// Query parameters: user_id, unit_id, due_status, today, search, year,
// ordering, page, page_size. due_status is evaluated against today, which
// defaults to the server's current date.
func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := billing.BillFilter{
		UserID:    billing.UserID(q.Get("user_id")),
		UnitID:    billing.UnitID(q.Get("unit_id")),
		DueStatus: billing.DueStatus(q.Get("due_status")),
		Search:    strings.TrimSpace(q.Get("search")),
		Ordering:  billing.Ordering(q.Get("ordering")),
	}

	if filter.DueStatus != "" && !filter.DueStatus.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid due_status", nil)
		return
	}
	if !filter.Ordering.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid ordering", nil)
		return
	}

	today, ok := h.parseToday(w, r)
	if !ok {
		return
	}
	filter.Today = today

	var err error
	if filter.Year, err = intParam(q.Get("year"), 0); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	if filter.Page, err = intParam(q.Get("page"), 1); err != nil || filter.Page < 1 {
		writeError(w, http.StatusBadRequest, "Invalid page", err)
		return
	}
	if filter.PageSize, err = intParam(q.Get("page_size"), billing.DefaultPageSize); err != nil || filter.PageSize < 1 || filter.PageSize > 500 {
		writeError(w, http.StatusBadRequest, "Invalid page_size", err)
		return
	}

	page, err := h.Store.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bills", err)
		return
	}

	writeJSON(w, http.StatusOK, BillPageDTO{
		Count:    page.Count,
		Next:     page.Next,
		Previous: page.Previous,
		Results:  toBillDTOs(page.Results, today),
	})
}

// GetBill returns a single bill.
func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	b, err := h.Store.Get(r.Context(), billing.BillID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "Failed to get bill", err)
		return
	}
	writeJSON(w, http.StatusOK, toBillDTO(b, h.today()))
}

// CreateBill issues a regular bill priced from the unit's current profile.
func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req CreateBillRequest
	if !h.decode(w, r, &req) {
		return
	}
	due, err := billing.ParseDate(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid due_date", err)
		return
	}

	ctx := r.Context()
	profile, err := h.Store.Profile(ctx, billing.UnitID(req.UnitID))
	if err != nil {
		writeDomainError(w, "Failed to resolve unit", err)
		return
	}

	today := h.today()
	b, err := h.Engine.IssueRegularBill(billing.RegularBillInput{
		ID:        newBillID(),
		UserID:    billing.UserID(req.UserID),
		Profile:   profile,
		DueDate:   due,
		CreatedAt: today,
	})
	if err != nil {
		writeDomainError(w, "Failed to price bill", err)
		return
	}

	if err := h.Store.Save(ctx, b); err != nil {
		writeDomainError(w, "Failed to save bill", err)
		return
	}
	h.Metrics.BillsIssued([]billing.Bill{b})

	writeJSON(w, http.StatusCreated, toBillDTO(b, today))
}

// CreateAdvanceBill quotes and issues an advance payment in one step.
func (h *Handler) CreateAdvanceBill(w http.ResponseWriter, r *http.Request) {
	var req CreateAdvanceBillRequest
	if !h.decode(w, r, &req) {
		return
	}
	start, end, ok := parseSpan(w, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	ctx := r.Context()
	profile, err := h.Store.Profile(ctx, billing.UnitID(req.UnitID))
	if err != nil {
		writeDomainError(w, "Failed to quote advance", err)
		return
	}

	today := h.today()
	q, bills, err := h.Engine.IssueAdvance(billing.AdvanceBillInput{
		IDs:       func(int) billing.BillID { return newBillID() },
		UserID:    billing.UserID(req.UserID),
		Profile:   profile,
		Start:     start,
		End:       end,
		Split:     req.Split,
		CreatedAt: today,
	})
	if err != nil {
		writeDomainError(w, "Failed to issue advance", err)
		return
	}

	if err := h.Store.Save(ctx, bills...); err != nil {
		writeDomainError(w, "Failed to save bills", err)
		return
	}
	h.Metrics.BillsIssued(bills)

	writeJSON(w, http.StatusCreated, AdvanceBillResponse{
		Quote: toAdvanceQuoteDTO(q),
		Bills: toBillDTOs(bills, today),
	})
}

// RecordPayment transitions a bill's payment status.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}

	b, err := h.Store.RecordPaymentStatus(r.Context(),
		billing.BillID(chi.URLParam(r, "id")), billing.PaymentStatus(req.PaymentStatus))
	if err != nil {
		writeDomainError(w, "Failed to record payment", err)
		return
	}
	writeJSON(w, http.StatusOK, toBillDTO(b, h.today()))
}

// VerifyBill reports whether a bill still matches its pricing path.
func (h *Handler) VerifyBill(w http.ResponseWriter, r *http.Request) {
	b, dev, err := h.Reconciler.VerifyBill(r.Context(), billing.BillID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "Failed to verify bill", err)
		return
	}

	resp := VerifyBillDTO{
		Bill:     toBillDTO(b, h.today()),
		Matches:  dev == nil,
		Expected: money(b.AmountDue),
		Actual:   money(b.AmountDue),
		Delta:    money(decimal.Zero),
	}
	if dev != nil {
		resp.Expected = money(dev.Expected)
		resp.Delta = money(dev.Delta)
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetYearlySummary returns the resident's summary for ?year= (default: this year).
func (h *Handler) GetYearlySummary(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r.URL.Query().Get("year"), h.today().Year())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	s, err := h.Reconciler.YearlySummary(r.Context(), billing.UserID(chi.URLParam(r, "id")), year)
	if err != nil {
		writeDomainError(w, "Failed to build summary", err)
		return
	}
	writeJSON(w, http.StatusOK, toYearlySummaryDTO(s))
}

// GetMonthlyBreakdown returns the 12 monthly buckets for ?year=.
func (h *Handler) GetMonthlyBreakdown(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r.URL.Query().Get("year"), h.today().Year())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	months, err := h.Reconciler.MonthlyBreakdown(r.Context(), billing.UserID(chi.URLParam(r, "id")), year)
	if err != nil {
		writeDomainError(w, "Failed to build monthly breakdown", err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthlyDTOs(months))
}

// GetOverdue returns every resident with overdue bills as of ?today=.
func (h *Handler) GetOverdue(w http.ResponseWriter, r *http.Request) {
	today, ok := h.parseToday(w, r)
	if !ok {
		return
	}

	groups, err := h.Reconciler.Overdue(r.Context(), today)
	if err != nil {
		writeDomainError(w, "Failed to group overdue bills", err)
		return
	}
	writeJSON(w, http.StatusOK, toOverdueResponse(today, groups))
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.setCurrentScenario("")

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine and collaborator errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case billing.IsClientError(err):
		status = http.StatusBadRequest
	case billing.IsNotFound(err):
		status = http.StatusNotFound
	case billing.IsConflict(err):
		status = http.StatusConflict
	}
	writeError(w, status, message, err)
}

// decode reads a JSON body into dst and validates it. It writes the 400
// response itself and reports whether the handler should continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", validationDetails(err))
		return false
	}
	return true
}

func validationDetails(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
	}
	return errors.New(strings.Join(parts, "; "))
}

func (h *Handler) parseToday(w http.ResponseWriter, r *http.Request) (billing.Date, bool) {
	s := r.URL.Query().Get("today")
	if s == "" {
		return h.today(), true
	}
	d, err := billing.ParseDate(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid today", err)
		return billing.Date{}, false
	}
	return d, true
}

func parseSpan(w http.ResponseWriter, startStr, endStr string) (billing.Date, billing.Date, bool) {
	start, err := billing.ParseDate(startStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return billing.Date{}, billing.Date{}, false
	}
	end, err := billing.ParseDate(endStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date", err)
		return billing.Date{}, billing.Date{}, false
	}
	return start, end, true
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func newBillID() billing.BillID {
	return billing.BillID(uuid.NewString())
}
