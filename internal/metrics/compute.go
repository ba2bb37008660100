package metrics

import (
	"github.com/guregu/null/v6"

	"github.com/bobmcallan/fathom/internal/models"
)

// Metric identifiers referenced by checklist rule tables.
const (
	MetricRevenueCAGR          = "revenue_cagr"
	MetricTrailingPE           = "trailing_pe"
	MetricPEGRatio             = "peg_ratio"
	MetricAverageROE           = "average_roe"
	MetricQuickRatio           = "quick_ratio"
	MetricCurrentRatio         = "current_ratio"
	MetricDebtToEquity         = "debt_to_equity"
	MetricReturnOnAssets       = "return_on_assets"
	MetricGrossMargin          = "gross_margin"
	MetricInstitutionalHolding = "institutional_holding"
	MetricFCFYield             = "fcf_yield"
	MetricEVToEBITDA           = "ev_to_ebitda"
	MetricDSO                  = "days_sales_outstanding"
	MetricInventoryDays        = "inventory_days"
	MetricAnalystUpside        = "analyst_upside"
)

// ComputeAll derives every checklist metric from a snapshot. The result
// always contains all metric identifiers; values that could not be derived
// are present as invalid null.Floats.
func ComputeAll(snap *models.FinancialSnapshot) map[string]null.Float {
	m := make(map[string]null.Float, 15)

	m[MetricRevenueCAGR] = RevenueCAGR(revenueSeries(snap.Statements))

	roe := AverageROE(netIncomeByYear(snap.Statements), equityByYear(snap.BalanceSheet))
	if !roe.Valid {
		// Statement coverage is often shallower than the quote feed; take
		// the provider's trailing figure when the statements give nothing.
		roe = snap.Quote.ReturnOnEquity
	}
	m[MetricAverageROE] = roe

	m[MetricDSO] = unknown()
	m[MetricInventoryDays] = unknown()
	if st, ok := latestStatement(snap.Statements); ok && st.TotalRevenue.Valid {
		if bal, ok := latestBalance(snap.BalanceSheet); ok && bal.Receivables.Valid {
			m[MetricDSO] = DaysSalesOutstanding(bal.Receivables.Float64, st.TotalRevenue.Float64)
		}
	}
	if st, ok := latestStatement(snap.Statements); ok && st.CostOfRevenue.Valid {
		if bal, ok := latestBalance(snap.BalanceSheet); ok && bal.Inventory.Valid {
			m[MetricInventoryDays] = InventoryDays(bal.Inventory.Float64, st.CostOfRevenue.Float64)
		}
	}

	fcf := snap.Quote.FreeCashflow
	if !fcf.Valid {
		if st, ok := latestStatement(snap.Statements); ok {
			fcf = DerivedFreeCashFlow(st.FreeCashFlow, st.OperatingCashFlow, st.CapitalExpenditure)
		}
	}
	m[MetricFCFYield] = FCFYield(fcf, snap.Quote.MarketCap)

	m[MetricEVToEBITDA] = EVToEBITDA(snap.Quote.EnterpriseValue, snap.Quote.EBITDA)
	m[MetricDebtToEquity] = DebtToEquityNormalized(snap.Quote.DebtToEquity)
	m[MetricAnalystUpside] = AnalystUpside(snap.Quote.TargetMeanPrice, snap.CurrentPrice)

	// Quote passthroughs. The null carrier already encodes absence.
	m[MetricTrailingPE] = snap.Quote.TrailingPE
	m[MetricPEGRatio] = snap.Quote.PEGRatio
	m[MetricQuickRatio] = snap.Quote.QuickRatio
	m[MetricCurrentRatio] = snap.Quote.CurrentRatio
	m[MetricReturnOnAssets] = snap.Quote.ReturnOnAssets
	m[MetricGrossMargin] = snap.Quote.GrossMargins
	m[MetricInstitutionalHolding] = snap.Quote.InstitutionalHoldingShare

	return m
}

// revenueSeries extracts the valid revenue figures in period order.
func revenueSeries(statements []models.StatementPeriod) []float64 {
	series := make([]float64, 0, len(statements))
	for _, st := range statements {
		if st.TotalRevenue.Valid {
			series = append(series, st.TotalRevenue.Float64)
		}
	}
	return series
}

// netIncomeByYear keys valid net income figures by fiscal year.
func netIncomeByYear(statements []models.StatementPeriod) map[int]float64 {
	out := make(map[int]float64, len(statements))
	for _, st := range statements {
		if st.NetIncome.Valid {
			out[st.EndDate.Year()] = st.NetIncome.Float64
		}
	}
	return out
}

// equityByYear keys valid stockholder equity figures by fiscal year.
func equityByYear(periods []models.BalancePeriod) map[int]float64 {
	out := make(map[int]float64, len(periods))
	for _, p := range periods {
		if p.StockholdersEquity.Valid {
			out[p.EndDate.Year()] = p.StockholdersEquity.Float64
		}
	}
	return out
}

// latestStatement returns the newest statement period, if any. Series are
// ordered oldest to newest.
func latestStatement(statements []models.StatementPeriod) (models.StatementPeriod, bool) {
	if len(statements) == 0 {
		return models.StatementPeriod{}, false
	}
	return statements[len(statements)-1], true
}

// latestBalance returns the newest balance sheet period, if any.
func latestBalance(periods []models.BalancePeriod) (models.BalancePeriod, bool) {
	if len(periods) == 0 {
		return models.BalancePeriod{}, false
	}
	return periods[len(periods)-1], true
}
