// Package models defines data structures for Fathom
package models

import (
	"encoding/gob"
	"fmt"
	"time"

	"github.com/guregu/null/v6"
)

func init() {
	gob.Register(AnalysisReport{})
}

// CheckStatus is the outcome of one checklist rule.
type CheckStatus string

const (
	CheckPass    CheckStatus = "pass"
	CheckFail    CheckStatus = "fail"
	CheckUnknown CheckStatus = "unknown"
)

// Comparator is the direction a checklist rule tests. Comparisons are
// strict: a value exactly at the threshold fails.
type Comparator string

const (
	CompareGreater Comparator = ">"
	CompareLess    Comparator = "<"
)

// VerdictTier is the ordered assessment bucket for a scorecard.
type VerdictTier string

const (
	VerdictHigh   VerdictTier = "high"
	VerdictMedium VerdictTier = "medium"
	VerdictLow    VerdictTier = "low"
)

// PolicyName selects how the checklist is scored.
type PolicyName string

const (
	PolicyAggregate PolicyName = "aggregate"
	PolicyGate      PolicyName = "gate"
)

// SentimentLabel classifies average headline polarity. Unavailable means no
// headline could be scored; it is distinct from Neutral.
type SentimentLabel string

const (
	SentimentPositive    SentimentLabel = "positive"
	SentimentNegative    SentimentLabel = "negative"
	SentimentNeutral     SentimentLabel = "neutral"
	SentimentUnavailable SentimentLabel = "unavailable"
)

// MetricCheck is one evaluated checklist rule.
type MetricCheck struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Value       null.Float  `json:"value"`
	Display     string      `json:"display"` // formatted value, "N/A" when unknown
	Comparator  Comparator  `json:"comparator"`
	Threshold   float64     `json:"threshold"`
	Status      CheckStatus `json:"status"`
	Explanation string      `json:"explanation"`
}

// Scorecard is the evaluated checklist with its composite score. Maximum is
// the number of checks actually evaluated, which under the gate policy may
// be fewer than the rule table length.
type Scorecard struct {
	Checks  []MetricCheck `json:"checks"`
	Score   int           `json:"score"`
	Maximum int           `json:"maximum"`
	Verdict VerdictTier   `json:"verdict"`
}

// SentimentSignal is the classified news sentiment for a ticker.
type SentimentSignal struct {
	Label           SentimentLabel `json:"label"`
	Strength        string         `json:"strength,omitempty"` // strong, moderate, weak
	Rationale       string         `json:"rationale"`
	HeadlineCount   int            `json:"headline_count"`
	AveragePolarity null.Float     `json:"average_polarity"`
}

// ForecastPoint is one modeled day: point estimate with symmetric bounds.
type ForecastPoint struct {
	Date     time.Time `json:"date"`
	Estimate float64   `json:"estimate"`
	Lower    float64   `json:"lower"`
	Upper    float64   `json:"upper"`
}

// ForecastSeries spans the fitted history plus the projected horizon.
// AnchorIndex marks the look-back "current" baseline: the model's own
// estimate one horizon-length before the last observed date.
type ForecastSeries struct {
	Points         []ForecastPoint `json:"points"`
	AnchorIndex    int             `json:"anchor_index"`
	AnchorEstimate float64         `json:"anchor_estimate"`
	FinalEstimate  float64         `json:"final_estimate"`
	ROI            float64         `json:"roi"` // percent from anchor to final
	HorizonYears   int             `json:"horizon_years"`
}

// AnalysisReport is the complete assessment produced for one request.
// Forecast and Commentary are optional: a failed section leaves the rest
// of the report valid.
type AnalysisReport struct {
	Ticker       string          `json:"ticker"`
	Name         string          `json:"name,omitempty"`
	Currency     string          `json:"currency,omitempty"`
	CurrentPrice float64         `json:"current_price"`
	Preset       int             `json:"preset"`
	Policy       PolicyName      `json:"policy"`
	Scorecard    Scorecard       `json:"scorecard"`
	Sentiment    SentimentSignal `json:"sentiment"`
	Forecast     *ForecastSeries `json:"forecast,omitempty"`
	ForecastNote string          `json:"forecast_note,omitempty"` // set when forecast absent
	Commentary   string          `json:"commentary,omitempty"`
	GeneratedAt  time.Time       `json:"generated_at" badgerhold:"index"`
}

// StoreKey identifies a cached report: one slot per ticker, preset, and
// policy combination.
func (r *AnalysisReport) StoreKey() string {
	return ReportKey(r.Ticker, r.Preset, r.Policy)
}

// ReportKey builds the store key for a ticker, preset, and policy.
func ReportKey(ticker string, preset int, policy PolicyName) string {
	return fmt.Sprintf("%s|%d|%s", ticker, preset, policy)
}
