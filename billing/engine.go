package billing

// Engine bundles the components around one immutable rate configuration.
// All methods are safe for concurrent use: nothing here is written after
// NewEngine returns.
type Engine struct {
	Rates     ChargeRates
	Fees      FeeComposer
	Proration ProrationEngine
}

// NewEngine wires the components to rates and the advance coverage policy.
func NewEngine(rates ChargeRates, coverage CoveragePolicy) *Engine {
	if coverage == "" {
		coverage = CoverPartialMonth
	}
	fees := FeeComposer{Rates: rates}
	return &Engine{
		Rates:     rates,
		Fees:      fees,
		Proration: ProrationEngine{Fees: fees, Coverage: coverage},
	}
}

// Quote prices an advance payment; see ProrationEngine.Quote.
func (e *Engine) Quote(profile UnitFeeProfile, start, end Date) (AdvanceQuote, error) {
	return e.Proration.Quote(profile, start, end)
}
