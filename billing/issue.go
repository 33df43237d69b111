package billing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// ISSUANCE - the only two ways an amount_due is produced
// =============================================================================

// RegularBillInput describes a single-period bill to issue.
type RegularBillInput struct {
	ID        BillID
	UserID    UserID
	Profile   UnitFeeProfile
	DueDate   Date
	CreatedAt Date
}

// AdvanceBillInput describes an advance payment to issue for [Start, End].
//
// The amount is never supplied by the caller: IssueAdvance quotes the span
// itself. With Split=false one bill carries the whole quote total and covers
// MonthsCovered months. With Split=true the quote is materialized as one
// monthly bill per covered month, due on consecutive month anniversaries of
// the span start.
type AdvanceBillInput struct {
	IDs       func(i int) BillID
	UserID    UserID
	Profile   UnitFeeProfile
	Start     Date
	End       Date
	Split     bool
	CreatedAt Date
}

// IssueRegularBill prices and builds a pending regular bill.
func (e *Engine) IssueRegularBill(in RegularBillInput) (Bill, error) {
	amount, err := e.Fees.Compose(in.Profile)
	if err != nil {
		return Bill{}, err
	}
	return Bill{
		ID:            in.ID,
		UserID:        in.UserID,
		UnitID:        in.Profile.UnitID,
		Kind:          BillRegular,
		AmountDue:     amount,
		MonthsCovered: 1,
		DueDate:       in.DueDate,
		PaymentStatus: PaymentPending,
		CreatedAt:     in.CreatedAt,
	}, nil
}

// IssueAdvance quotes the span and builds pending bill(s) from that quote.
// The returned quote is the one every bill amount was taken from.
func (e *Engine) IssueAdvance(in AdvanceBillInput) (AdvanceQuote, []Bill, error) {
	q, err := e.Proration.Quote(in.Profile, in.Start, in.End)
	if err != nil {
		return AdvanceQuote{}, nil, err
	}
	ids := in.IDs
	if ids == nil {
		ids = func(int) BillID { return "" }
	}

	if !in.Split {
		return q, []Bill{{
			ID:            ids(0),
			UserID:        in.UserID,
			UnitID:        q.UnitID,
			Kind:          BillAdvance,
			AmountDue:     q.TotalAmount,
			MonthsCovered: q.MonthsCovered,
			DueDate:       q.Span.Start,
			PaymentStatus: PaymentPending,
			CreatedAt:     in.CreatedAt,
		}}, nil
	}

	bills := make([]Bill, q.MonthsCovered)
	for i := range bills {
		bills[i] = Bill{
			ID:            ids(i),
			UserID:        in.UserID,
			UnitID:        q.UnitID,
			Kind:          BillAdvance,
			AmountDue:     q.MonthlyAmount,
			MonthsCovered: 1,
			DueDate:       q.Span.Start.AddMonths(i),
			PaymentStatus: PaymentPending,
			CreatedAt:     in.CreatedAt,
		}
	}
	return q, bills, nil
}

// =============================================================================
// VERIFICATION - any override must be visibly a deviation
// =============================================================================

// AmountDeviation reports a bill whose amount differs from its pricing path.
type AmountDeviation struct {
	BillID   BillID
	Expected decimal.Decimal
	Actual   decimal.Decimal
	Delta    decimal.Decimal // Actual - Expected
}

// ExpectedAmount is compose(profile) * MonthsCovered.
func (e *Engine) ExpectedAmount(b Bill, profile UnitFeeProfile) (decimal.Decimal, error) {
	monthly, err := e.Fees.Compose(profile)
	if err != nil {
		return decimal.Zero, err
	}
	return RoundMoney(monthly.Mul(decimal.NewFromInt(int64(b.coveredMonths())))), nil
}

// VerifyAmount returns nil when the bill matches its expected amount.
func (e *Engine) VerifyAmount(b Bill, profile UnitFeeProfile) (*AmountDeviation, error) {
	expected, err := e.ExpectedAmount(b, profile)
	if err != nil {
		return nil, err
	}
	if b.AmountDue.Equal(expected) {
		return nil, nil
	}
	return &AmountDeviation{
		BillID:   b.ID,
		Expected: expected,
		Actual:   b.AmountDue,
		Delta:    b.AmountDue.Sub(expected),
	}, nil
}
