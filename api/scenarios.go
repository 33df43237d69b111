/*
scenarios.go - Demo data sets for testing and demonstrations

PURPOSE:
  Provides pre-built scenarios that populate the database with realistic
  units and bills. Every amount is produced by the engine's issuance path,
  so scenario data always verifies cleanly.

AVAILABLE SCENARIOS:
  single-resident:  One unit, six monthly bills in 2025 with mixed statuses
  overdue-fleet:    Three residents across two buildings, one fully paid
  advance-payment:  Advance payments issued as one bill and as monthly splits

HOW SCENARIOS WORK:
  1. Reset database (clear all data)
  2. Create units
  3. Issue bills through the engine
  4. Record payment statuses

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "overdue-fleet"}

NOTE:
  Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/billing-engine/billing"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "single-resident",
		Name:        "Single Resident",
		Description: "One unit with security and maintenance, Jan-Jun 2025 bills: paid, rejected and pending",
	},
	{
		ID:          "overdue-fleet",
		Name:        "Overdue Fleet",
		Description: "Three residents in two buildings; two are overdue, one is fully paid",
	},
	{
		ID:          "advance-payment",
		Name:        "Advance Payment",
		Description: "Advance payments for Jan 5 - Mar 20 2025, issued whole and split per month",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.scenario()
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}

	var load func(context.Context) error
	switch req.ScenarioID {
	case "single-resident":
		load = h.loadSingleResidentScenario
	case "overdue-fleet":
		load = h.loadOverdueFleetScenario
	case "advance-payment":
		load = h.loadAdvancePaymentScenario
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.setCurrentScenario("")

	if err := load(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.setCurrentScenario(req.ScenarioID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadSingleResidentScenario(ctx context.Context) error {
	unit := demoUnit("unit-a101", "A-101", "Tower A", 10000, true, false, true)
	if err := h.Store.SaveUnit(ctx, unit); err != nil {
		return err
	}

	statuses := []billing.PaymentStatus{
		billing.PaymentPaid, billing.PaymentPaid, billing.PaymentPaid, billing.PaymentPaid,
		billing.PaymentRejected, billing.PaymentPending,
	}
	for i, status := range statuses {
		due := billing.NewDate(2025, time.Month(i+1), 1)
		id := billing.BillID(fmt.Sprintf("bill-alice-2025-%02d", i+1))
		if err := h.issueDemoBill(ctx, id, "res-alice", unit, due, status); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadOverdueFleetScenario(ctx context.Context) error {
	units := []billing.Unit{
		demoUnit("unit-a101", "A-101", "Tower A", 10000, true, false, true),
		demoUnit("unit-a102", "A-102", "Tower A", 8000, false, true, false),
		demoUnit("unit-b201", "B-201", "Tower B", 12000, true, true, true),
	}
	for _, u := range units {
		if err := h.Store.SaveUnit(ctx, u); err != nil {
			return err
		}
	}

	type plan struct {
		user   billing.UserID
		unit   billing.Unit
		months []time.Month
		paid   int // first n months are paid
	}
	plans := []plan{
		{"res-alice", units[0], []time.Month{time.March, time.April, time.May}, 1},
		{"res-alice", units[1], []time.Month{time.April, time.May}, 0},
		{"res-bob", units[2], []time.Month{time.January, time.February, time.March}, 3},
		{"res-carol", units[2], []time.Month{time.April, time.May, time.June}, 1},
	}

	for _, p := range plans {
		for i, m := range p.months {
			status := billing.PaymentPending
			if i < p.paid {
				status = billing.PaymentPaid
			}
			id := billing.BillID(fmt.Sprintf("bill-%s-%s-%02d", p.user, p.unit.ID, int(m)))
			if err := h.issueDemoBill(ctx, id, p.user, p.unit, billing.NewDate(2025, m, 1), status); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *Handler) loadAdvancePaymentScenario(ctx context.Context) error {
	unit := demoUnit("unit-c301", "C-301", "Garden Court", 5000, false, false, false)
	if err := h.Store.SaveUnit(ctx, unit); err != nil {
		return err
	}

	for _, split := range []bool{false, true} {
		user := billing.UserID("res-dave")
		prefix := "bill-dave-advance"
		if split {
			user = "res-erin"
			prefix = "bill-erin-advance"
		}
		_, bills, err := h.Engine.IssueAdvance(billing.AdvanceBillInput{
			IDs:       func(i int) billing.BillID { return billing.BillID(fmt.Sprintf("%s-%d", prefix, i+1)) },
			UserID:    user,
			Profile:   unit.Profile,
			Start:     billing.NewDate(2025, time.January, 5),
			End:       billing.NewDate(2025, time.March, 20),
			Split:     split,
			CreatedAt: billing.NewDate(2025, time.January, 1),
		})
		if err != nil {
			return err
		}
		if err := h.Store.Save(ctx, bills...); err != nil {
			return err
		}
		h.Metrics.BillsIssued(bills)
	}

	// Dave paid up front; Erin paid the first month only.
	if _, err := h.Store.RecordPaymentStatus(ctx, "bill-dave-advance-1", billing.PaymentPaid); err != nil {
		return err
	}
	_, err := h.Store.RecordPaymentStatus(ctx, "bill-erin-advance-1", billing.PaymentPaid)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) scenario() string {
	h.scenarioMu.RLock()
	defer h.scenarioMu.RUnlock()
	return h.currentScenario
}

func (h *Handler) setCurrentScenario(id string) {
	h.scenarioMu.Lock()
	h.currentScenario = id
	h.scenarioMu.Unlock()
}

func demoUnit(id, name, building string, rent int64, security, amenities, maintenance bool) billing.Unit {
	unitID := billing.UnitID(id)
	return billing.Unit{
		ID:      unitID,
		Label:   billing.UnitLabel{UnitName: name, Building: building},
		Profile: billing.NewUnitFeeProfile(unitID, decimal.NewFromInt(rent), security, amenities, maintenance),
	}
}

func (h *Handler) issueDemoBill(ctx context.Context, id billing.BillID, user billing.UserID, unit billing.Unit, due billing.Date, status billing.PaymentStatus) error {
	b, err := h.Engine.IssueRegularBill(billing.RegularBillInput{
		ID:        id,
		UserID:    user,
		Profile:   unit.Profile,
		DueDate:   due,
		CreatedAt: due.AddDays(-14),
	})
	if err != nil {
		return err
	}
	if err := h.Store.Save(ctx, b); err != nil {
		return err
	}
	h.Metrics.BillsIssued([]billing.Bill{b})

	if status != billing.PaymentPending {
		if _, err := h.Store.RecordPaymentStatus(ctx, id, status); err != nil {
			return err
		}
	}
	return nil
}
