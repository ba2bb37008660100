// Package checklist evaluates derived fundamental metrics against ordered
// rule tables and aggregates the outcomes into a scored verdict.
package checklist

import (
	"fmt"

	"github.com/bobmcallan/fathom/internal/metrics"
	"github.com/bobmcallan/fathom/internal/models"
)

// Rule is one row of a checklist table. Comparisons are strict in the rule's
// direction; a value exactly at the threshold fails.
type Rule struct {
	MetricID   string
	Label      string
	Comparator models.Comparator
	Threshold  float64
}

// Preset sizes. Larger presets are strict supersets of smaller ones, in the
// same order.
const (
	PresetCore     = 5
	PresetExtended = 8
	PresetFull     = 15
)

// PresetRules returns the ordered rule table for a preset size.
func PresetRules(size int) ([]Rule, error) {
	switch size {
	case PresetCore:
		return coreRules(), nil
	case PresetExtended:
		return append(coreRules(), extendedRules()...), nil
	case PresetFull:
		return append(append(coreRules(), extendedRules()...), sweepRules()...), nil
	}
	return nil, fmt.Errorf("unsupported preset size %d: want %d, %d or %d", size, PresetCore, PresetExtended, PresetFull)
}

// coreRules is the original five-point short list.
func coreRules() []Rule {
	return []Rule{
		{metrics.MetricRevenueCAGR, "Revenue CAGR", models.CompareGreater, 0.10},
		{metrics.MetricTrailingPE, "Trailing P/E", models.CompareLess, 25},
		{metrics.MetricPEGRatio, "PEG Ratio", models.CompareLess, 2},
		{metrics.MetricAverageROE, "Average ROE", models.CompareGreater, 0.05},
		{metrics.MetricQuickRatio, "Quick Ratio", models.CompareGreater, 1.5},
	}
}

// extendedRules adds the liquidity and leverage checks of the eight-point
// preset.
func extendedRules() []Rule {
	return []Rule{
		{metrics.MetricCurrentRatio, "Current Ratio", models.CompareGreater, 1.0},
		{metrics.MetricDebtToEquity, "Debt/Equity", models.CompareLess, 2.0},
		{metrics.MetricReturnOnAssets, "Return on Assets", models.CompareGreater, 0.05},
	}
}

// sweepRules completes the fifteen-point full fundamental sweep.
func sweepRules() []Rule {
	return []Rule{
		{metrics.MetricGrossMargin, "Gross Margin", models.CompareGreater, 0.30},
		{metrics.MetricInstitutionalHolding, "Institutional Holding", models.CompareGreater, 0.10},
		{metrics.MetricFCFYield, "FCF Yield", models.CompareGreater, 0.03},
		{metrics.MetricEVToEBITDA, "EV/EBITDA", models.CompareLess, 15},
		{metrics.MetricDSO, "Days Sales Outstanding", models.CompareLess, 90},
		{metrics.MetricInventoryDays, "Inventory Days", models.CompareLess, 120},
		{metrics.MetricAnalystUpside, "Analyst Upside", models.CompareGreater, 0},
	}
}
