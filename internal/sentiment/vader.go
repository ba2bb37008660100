package sentiment

import "github.com/jonreiter/govader"

// VaderScorer scores text with the VADER lexicon: bag-of-words polarity
// with negation and intensity handling, deterministic and offline.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderScorer builds the production scorer.
func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Polarity returns the VADER compound score in [-1, 1].
func (s *VaderScorer) Polarity(text string) (float64, error) {
	return s.analyzer.PolarityScores(text).Compound, nil
}
