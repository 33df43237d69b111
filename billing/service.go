/*
service.go - Reconciler: collaborator glue around the pure engine

PURPOSE:
  The engine functions take plain slices and maps. The Reconciler is the
  caller-side layer that fetches every page of bills from the repository,
  resolves profiles and labels from the unit directory, and hands the
  result to the engine. I/O, cancellation and errors from collaborators
  live here; the math does not.

ERROR PROPAGATION:
  UnknownUnit and repository errors are returned unchanged (wrapped with
  %w, so errors.Is/As still match).

SEE ALSO:
  - repository.go: collaborator contracts
  - summary.go, overdue.go: the computations this layer feeds
*/
package billing

import (
	"context"
	"fmt"
)

// fetchPageSize is the page size used when draining a listing.
const fetchPageSize = 100

// Reconciler computes rollups from repository data.
type Reconciler struct {
	Bills  BillRepository
	Units  UnitDirectory
	Engine *Engine
}

// AllBills drains every page of filter.
func (r *Reconciler) AllBills(ctx context.Context, filter BillFilter) ([]Bill, error) {
	filter.Page = 1
	filter.PageSize = fetchPageSize

	var bills []Bill
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := r.Bills.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("list bills page %d: %w", filter.Page, err)
		}
		bills = append(bills, page.Results...)
		if page.Next == nil {
			return bills, nil
		}
		filter.Page = *page.Next
	}
}

// YearlySummary builds the resident's summary for year.
func (r *Reconciler) YearlySummary(ctx context.Context, userID UserID, year int) (YearlySummary, error) {
	bills, err := r.AllBills(ctx, BillFilter{UserID: userID, Year: year})
	if err != nil {
		return YearlySummary{}, err
	}

	profiles, labels, err := r.resolveUnits(ctx, bills, true)
	if err != nil {
		return YearlySummary{}, err
	}

	return r.Engine.BuildYearlySummary(SummaryInput{
		UserID:   userID,
		Year:     year,
		Bills:    bills,
		Profiles: profiles,
		Labels:   labels,
	})
}

// MonthlyBreakdown returns the 12 monthly buckets for the resident's year.
func (r *Reconciler) MonthlyBreakdown(ctx context.Context, userID UserID, year int) ([]MonthlyBreakdownEntry, error) {
	bills, err := r.AllBills(ctx, BillFilter{UserID: userID, Year: year})
	if err != nil {
		return nil, err
	}
	return AggregateMonths(bills, year), nil
}

// Overdue groups every overdue bill in the fleet by resident.
func (r *Reconciler) Overdue(ctx context.Context, today Date) ([]OverdueGroup, error) {
	bills, err := r.AllBills(ctx, BillFilter{DueStatus: DueStatusOverdue, Today: today})
	if err != nil {
		return nil, err
	}

	_, labels, err := r.resolveUnits(ctx, bills, false)
	if err != nil {
		return nil, err
	}
	return GroupOverdue(bills, today, labels)
}

// QuoteAdvance resolves the unit's profile and prices [start, end].
func (r *Reconciler) QuoteAdvance(ctx context.Context, unitID UnitID, start, end Date) (AdvanceQuote, error) {
	profile, err := r.Units.Profile(ctx, unitID)
	if err != nil {
		return AdvanceQuote{}, err
	}
	return r.Engine.Quote(profile, start, end)
}

// VerifyBill compares a stored bill against its pricing path.
func (r *Reconciler) VerifyBill(ctx context.Context, id BillID) (Bill, *AmountDeviation, error) {
	bill, err := r.Bills.Get(ctx, id)
	if err != nil {
		return Bill{}, nil, err
	}
	profile, err := r.Units.Profile(ctx, bill.UnitID)
	if err != nil {
		return Bill{}, nil, err
	}
	dev, err := r.Engine.VerifyAmount(bill, profile)
	return bill, dev, err
}

func (r *Reconciler) resolveUnits(ctx context.Context, bills []Bill, withProfiles bool) (map[UnitID]UnitFeeProfile, map[UnitID]UnitLabel, error) {
	profiles := make(map[UnitID]UnitFeeProfile)
	labels := make(map[UnitID]UnitLabel)

	for _, b := range bills {
		if _, done := labels[b.UnitID]; done {
			continue
		}
		label, err := r.Units.Label(ctx, b.UnitID)
		if err != nil {
			return nil, nil, err
		}
		labels[b.UnitID] = label

		if withProfiles {
			profile, err := r.Units.Profile(ctx, b.UnitID)
			if err != nil {
				return nil, nil, err
			}
			profiles[b.UnitID] = profile
		}
	}
	return profiles, labels, nil
}
