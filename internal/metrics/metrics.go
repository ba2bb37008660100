// Package metrics derives fundamental ratios from financial statement and
// quote data. Every function is total: missing or degenerate input yields
// an invalid null.Float (unknown), never an error, a panic, or a silent
// zero. One metric's failure is isolated from all others.
package metrics

import (
	"math"
	"sort"

	"github.com/guregu/null/v6"
)

// unknown is the tagged absent value every metric returns on bad input.
func unknown() null.Float {
	return null.Float{}
}

// known wraps a computed value, rejecting NaN and infinities.
func known(v float64) null.Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return unknown()
	}
	return null.FloatFrom(v)
}

// RevenueCAGR computes the compound annual growth rate over an ordered
// (oldest to newest) revenue series. Requires at least 2 points and a
// strictly positive starting value; a fractional power of a non-positive
// base is undefined, so those inputs are unknown rather than an error.
func RevenueCAGR(series []float64) null.Float {
	if len(series) < 2 {
		return unknown()
	}
	start := series[0]
	end := series[len(series)-1]
	if start <= 0 {
		return unknown()
	}
	periods := float64(len(series) - 1)
	return known(math.Pow(end/start, 1/periods) - 1)
}

// AverageROE computes the arithmetic mean of per-period net income over
// equity, across the fiscal years present in both series. Years with zero
// equity are skipped; no overlapping year means unknown.
func AverageROE(netIncome, equity map[int]float64) null.Float {
	if len(netIncome) == 0 || len(equity) == 0 {
		return unknown()
	}

	years := make([]int, 0, len(netIncome))
	for year := range netIncome {
		years = append(years, year)
	}
	sort.Ints(years)

	var sum float64
	var count int
	for _, year := range years {
		eq, ok := equity[year]
		if !ok || eq == 0 {
			continue
		}
		sum += netIncome[year] / eq
		count++
	}
	if count == 0 {
		return unknown()
	}
	return known(sum / float64(count))
}

// DaysSalesOutstanding computes the average collection period in days from
// the most recent receivables and revenue figures.
func DaysSalesOutstanding(receivables, revenue float64) null.Float {
	if revenue <= 0 {
		return unknown()
	}
	return known(receivables / revenue * 365)
}

// InventoryDays computes how many days of cost of revenue the current
// inventory represents.
func InventoryDays(inventory, costOfRevenue float64) null.Float {
	if costOfRevenue <= 0 {
		return unknown()
	}
	return known(inventory / costOfRevenue * 365)
}

// DerivedFreeCashFlow prefers an explicit free cash flow figure and falls
// back to operating cash flow plus capital expenditure. Capital expenditure
// is delivered as a signed negative figure, so the fallback is an addition.
func DerivedFreeCashFlow(explicit, operatingCashFlow, capitalExpenditure null.Float) null.Float {
	if explicit.Valid {
		return explicit
	}
	if operatingCashFlow.Valid && capitalExpenditure.Valid {
		return known(operatingCashFlow.Float64 + capitalExpenditure.Float64)
	}
	return unknown()
}

// FCFYield divides free cash flow by market capitalization.
func FCFYield(freeCashFlow, marketCap null.Float) null.Float {
	if !freeCashFlow.Valid || !marketCap.Valid || marketCap.Float64 <= 0 {
		return unknown()
	}
	return known(freeCashFlow.Float64 / marketCap.Float64)
}

// EVToEBITDA divides enterprise value by EBITDA.
func EVToEBITDA(enterpriseValue, ebitda null.Float) null.Float {
	if !enterpriseValue.Valid || !ebitda.Valid || ebitda.Float64 == 0 {
		return unknown()
	}
	return known(enterpriseValue.Float64 / ebitda.Float64)
}

// DebtToEquityNormalized converts the source debt/equity figure, which is
// delivered as a percentage pre-multiplied by 100, to a plain ratio.
func DebtToEquityNormalized(raw null.Float) null.Float {
	if !raw.Valid {
		return unknown()
	}
	return known(raw.Float64 / 100)
}

// AnalystUpside computes the fractional distance from the current price to
// the mean analyst target.
func AnalystUpside(targetMeanPrice null.Float, currentPrice float64) null.Float {
	if !targetMeanPrice.Valid || currentPrice <= 0 {
		return unknown()
	}
	return known((targetMeanPrice.Float64 - currentPrice) / currentPrice)
}
