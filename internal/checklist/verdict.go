package checklist

import "github.com/bobmcallan/fathom/internal/models"

// Classify maps a score against its maximum to a verdict tier. Cutoffs are
// normalized fractions so the same classifier serves every preset size.
// A zero maximum, possible only with an empty rule table, is Low.
func Classify(score, maximum int) models.VerdictTier {
	if maximum <= 0 {
		return models.VerdictLow
	}
	ratio := float64(score) / float64(maximum)
	switch {
	case ratio >= 0.8:
		return models.VerdictHigh
	case ratio >= 0.5:
		return models.VerdictMedium
	default:
		return models.VerdictLow
	}
}
