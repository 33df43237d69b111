package billing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// OVERDUE AGGREGATOR - fleet-wide view of who owes what
// =============================================================================

// OverdueGroup collects one resident's overdue bills.
type OverdueGroup struct {
	UserID         UserID
	TotalAmountDue decimal.Decimal
	Units          []string // "{unit_name} ({building})", de-duplicated, bill order
	MonthsDue      []string // "{Month} {year}", de-duplicated, bill order
	BillsCount     int
}

// GroupOverdue builds one group per resident that has at least one bill
// classified overdue as of today. Residents with no overdue bills are
// omitted. Groups are ordered by first appearance in bills.
//
// Every overdue bill's unit must have a label; a miss is UnknownUnit.
func GroupOverdue(bills []Bill, today Date, labels map[UnitID]UnitLabel) ([]OverdueGroup, error) {
	type acc struct {
		group  OverdueGroup
		units  map[string]bool
		months map[string]bool
	}

	var order []UserID
	groups := make(map[UserID]*acc)

	for _, b := range bills {
		if b.DueStatus(today) != DueStatusOverdue {
			continue
		}
		label, ok := labels[b.UnitID]
		if !ok {
			return nil, &UnknownUnitError{UnitID: b.UnitID}
		}

		g, ok := groups[b.UserID]
		if !ok {
			g = &acc{
				group:  OverdueGroup{UserID: b.UserID, TotalAmountDue: decimal.Zero},
				units:  make(map[string]bool),
				months: make(map[string]bool),
			}
			groups[b.UserID] = g
			order = append(order, b.UserID)
		}

		g.group.TotalAmountDue = g.group.TotalAmountDue.Add(b.AmountDue)
		g.group.BillsCount++

		if u := label.String(); !g.units[u] {
			g.units[u] = true
			g.group.Units = append(g.group.Units, u)
		}
		if m := b.DueDate.MonthKey().Label(); !g.months[m] {
			g.months[m] = true
			g.group.MonthsDue = append(g.group.MonthsDue, m)
		}
	}

	out := make([]OverdueGroup, 0, len(order))
	for _, id := range order {
		out = append(out, groups[id].group)
	}
	return out, nil
}

// OverdueTotal sums TotalAmountDue across groups.
func OverdueTotal(groups []OverdueGroup) decimal.Decimal {
	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(g.TotalAmountDue)
	}
	return total
}
