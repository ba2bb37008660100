package checklist

import (
	"fmt"
	"strconv"

	"github.com/guregu/null/v6"

	"github.com/bobmcallan/fathom/internal/models"
)

// Evaluate runs a rule table against computed metric values and returns the
// scored card. Under the aggregate policy every rule is evaluated; under the
// gate policy evaluation stops at the first Fail and the card contains only
// the checks seen up to and including it. An Unknown check never halts the
// gate and never counts as a pass.
func Evaluate(rules []Rule, values map[string]null.Float, policy models.PolicyName) models.Scorecard {
	checks := make([]models.MetricCheck, 0, len(rules))
	score := 0

	for _, rule := range rules {
		check := evaluateRule(rule, values[rule.MetricID])
		checks = append(checks, check)
		if check.Status == models.CheckPass {
			score++
		}
		if policy == models.PolicyGate && check.Status == models.CheckFail {
			break
		}
	}

	return models.Scorecard{
		Checks:  checks,
		Score:   score,
		Maximum: len(checks),
		Verdict: Classify(score, len(checks)),
	}
}

// evaluateRule compares one metric value against its rule.
func evaluateRule(rule Rule, value null.Float) models.MetricCheck {
	check := models.MetricCheck{
		ID:         rule.MetricID,
		Label:      rule.Label,
		Value:      value,
		Comparator: rule.Comparator,
		Threshold:  rule.Threshold,
	}

	if !value.Valid {
		check.Display = "N/A"
		check.Status = models.CheckUnknown
		check.Explanation = "no data"
		return check
	}

	check.Display = formatValue(value.Float64)
	threshold := formatValue(rule.Threshold)

	passed := false
	switch rule.Comparator {
	case models.CompareGreater:
		passed = value.Float64 > rule.Threshold
	case models.CompareLess:
		passed = value.Float64 < rule.Threshold
	}

	if passed {
		check.Status = models.CheckPass
		check.Explanation = fmt.Sprintf("%s %s %s", check.Display, rule.Comparator, threshold)
	} else {
		check.Status = models.CheckFail
		check.Explanation = fmt.Sprintf("%s not %s %s", check.Display, rule.Comparator, threshold)
	}
	return check
}

// formatValue renders a metric or threshold for display, trimming
// insignificant trailing zeros.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}
