// Package sentiment classifies recent news headlines into a directional
// signal for a ticker.
package sentiment

import (
	"fmt"
	"math"
	"strings"

	"github.com/guregu/null/v6"

	"github.com/bobmcallan/fathom/internal/models"
)

// PolarityScorer assigns a polarity in [-1, 1] to a piece of text.
// Implementations must be safe for concurrent use.
type PolarityScorer interface {
	Polarity(text string) (float64, error)
}

// DefaultThreshold is the symmetric neutral band around zero polarity.
const DefaultThreshold = 0.05

// Classifier averages per-headline polarity and labels the result.
type Classifier struct {
	scorer    PolarityScorer
	threshold float64
}

// NewClassifier builds a classifier around a scorer. A non-positive
// threshold falls back to DefaultThreshold.
func NewClassifier(scorer PolarityScorer, threshold float64) *Classifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Classifier{scorer: scorer, threshold: threshold}
}

// Classify scores the most recent headlines, up to models.MaxHeadlines, and
// averages the polarities. Headlines that are blank or that the scorer
// rejects are skipped; when nothing could be scored the signal is
// Unavailable, which is not the same statement as Neutral.
func (c *Classifier) Classify(headlines []models.Headline) models.SentimentSignal {
	recent := headlines
	if len(recent) > models.MaxHeadlines {
		// Series arrive ordered oldest to newest; keep the newest.
		recent = recent[len(recent)-models.MaxHeadlines:]
	}

	var sum float64
	scored := 0
	for _, h := range recent {
		title := strings.TrimSpace(h.Title)
		if title == "" {
			continue
		}
		polarity, err := c.scorer.Polarity(title)
		if err != nil {
			continue
		}
		sum += polarity
		scored++
	}

	if scored == 0 {
		return models.SentimentSignal{
			Label:         models.SentimentUnavailable,
			Rationale:     "no headlines could be scored",
			HeadlineCount: 0,
		}
	}

	avg := sum / float64(scored)
	signal := models.SentimentSignal{
		Label:           label(avg, c.threshold),
		Strength:        strength(avg),
		HeadlineCount:   scored,
		AveragePolarity: null.FloatFrom(avg),
	}
	signal.Rationale = fmt.Sprintf("average polarity %.3f across %d of %d headlines", avg, scored, len(recent))
	return signal
}

// label buckets an average polarity against the symmetric threshold.
func label(avg, threshold float64) models.SentimentLabel {
	switch {
	case avg > threshold:
		return models.SentimentPositive
	case avg < -threshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// strength tags how far the average sits from zero.
func strength(avg float64) string {
	switch {
	case math.Abs(avg) >= 0.5:
		return "strong"
	case math.Abs(avg) >= 0.25:
		return "moderate"
	default:
		return "weak"
	}
}
