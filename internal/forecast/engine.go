// Package forecast fits an additive trend-plus-seasonality model to daily
// closing prices and projects it over a multi-year horizon.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/bobmcallan/fathom/internal/models"
)

// MinObservations is the fewest closes a fit will accept. Below this the
// seasonal terms swamp the signal and the projection is noise.
const MinObservations = 100

// ErrInsufficientData reports too little history to fit.
var ErrInsufficientData = errors.New("insufficient price history")

const (
	yearlyPeriod    = 365.25
	weeklyPeriod    = 7.0
	yearlyHarmonics = 3
	weeklyHarmonics = 2

	// 1 intercept + 1 trend + sin/cos per harmonic.
	featureCount = 2 + 2*yearlyHarmonics + 2*weeklyHarmonics
)

// Engine projects price history forward. The zero multiplier and ridge
// fields of a hand-built Engine are replaced by defaults in NewEngine.
type Engine struct {
	horizonYears int
	multiplier   float64 // bound width in residual standard deviations
	ridge        float64 // damping added to seasonal columns
}

// NewEngine builds an engine for a horizon in years. Horizons outside
// 1..10 clamp to 5.
func NewEngine(horizonYears int) *Engine {
	if horizonYears < 1 || horizonYears > 10 {
		horizonYears = 5
	}
	return &Engine{
		horizonYears: horizonYears,
		multiplier:   1.96,
		ridge:        1.0,
	}
}

// Forecast fits the model to ordered (oldest to newest) history and returns
// daily estimates spanning the fitted history plus the horizon. Anything
// that prevents a usable fit comes back as an error value; the engine never
// panics into its caller.
func (e *Engine) Forecast(history []models.PricePoint) (*models.ForecastSeries, error) {
	obs := finiteOnly(history)
	if len(obs) < MinObservations {
		return nil, fmt.Errorf("%w: %d closes, need %d", ErrInsufficientData, len(obs), MinObservations)
	}

	first := obs[0].Date
	last := obs[len(obs)-1].Date

	beta, err := e.fit(obs, first)
	if err != nil {
		return nil, err
	}

	// Residual spread on the fitted history sets the band width.
	residuals := make([]float64, len(obs))
	for i, p := range obs {
		residuals[i] = p.Close - predict(beta, daysSince(first, p.Date))
	}
	sigma := stat.StdDev(residuals, nil)
	if math.IsNaN(sigma) {
		sigma = 0
	}
	band := e.multiplier * sigma

	horizonDays := e.horizonYears * 365
	points := make([]models.ForecastPoint, 0, len(obs)+horizonDays)
	for _, p := range obs {
		points = append(points, e.point(beta, first, p.Date, band))
	}
	for i := 1; i <= horizonDays; i++ {
		points = append(points, e.point(beta, first, last.AddDate(0, 0, i), band))
	}

	series := &models.ForecastSeries{
		Points:       points,
		HorizonYears: e.horizonYears,
	}

	// The return baseline is the model's own estimate one horizon before the
	// last observed date, not the live price.
	anchorDate := last.AddDate(-e.horizonYears, 0, 0)
	series.AnchorIndex = anchorIndex(points, anchorDate)
	series.AnchorEstimate = points[series.AnchorIndex].Estimate
	series.FinalEstimate = points[len(points)-1].Estimate
	if series.AnchorEstimate != 0 {
		series.ROI = (series.FinalEstimate - series.AnchorEstimate) / series.AnchorEstimate * 100
	}

	return series, nil
}

// fit solves ridge-damped normal equations for the model coefficients.
func (e *Engine) fit(obs []models.PricePoint, first time.Time) (*mat.VecDense, error) {
	rows := len(obs)
	x := mat.NewDense(rows, featureCount, nil)
	y := mat.NewVecDense(rows, nil)
	for i, p := range obs {
		x.SetRow(i, featureRow(daysSince(first, p.Date)))
		y.SetVec(i, p.Close)
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	// Damp only the seasonal columns; intercept and trend stay untouched.
	for j := 2; j < featureCount; j++ {
		xtx.Set(j, j, xtx.At(j, j)+e.ridge)
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	var beta mat.VecDense
	if err := beta.SolveVec(&xtx, &xty); err != nil {
		return nil, fmt.Errorf("model fit: %w", err)
	}
	return &beta, nil
}

// point evaluates the model at a date with symmetric bounds.
func (e *Engine) point(beta *mat.VecDense, first time.Time, date time.Time, band float64) models.ForecastPoint {
	estimate := predict(beta, daysSince(first, date))
	return models.ForecastPoint{
		Date:     date,
		Estimate: estimate,
		Lower:    estimate - band,
		Upper:    estimate + band,
	}
}

// featureRow builds one design-matrix row for an offset in days.
func featureRow(t float64) []float64 {
	row := make([]float64, 0, featureCount)
	row = append(row, 1, t)
	for k := 1; k <= yearlyHarmonics; k++ {
		angle := 2 * math.Pi * float64(k) * t / yearlyPeriod
		row = append(row, math.Sin(angle), math.Cos(angle))
	}
	for k := 1; k <= weeklyHarmonics; k++ {
		angle := 2 * math.Pi * float64(k) * t / weeklyPeriod
		row = append(row, math.Sin(angle), math.Cos(angle))
	}
	return row
}

// predict evaluates the fitted model at an offset in days.
func predict(beta *mat.VecDense, t float64) float64 {
	row := featureRow(t)
	var sum float64
	for j, v := range row {
		sum += beta.AtVec(j) * v
	}
	return sum
}

// anchorIndex locates the first point on or after the target date,
// clamped to the series.
func anchorIndex(points []models.ForecastPoint, target time.Time) int {
	for i, p := range points {
		if !p.Date.Before(target) {
			return i
		}
	}
	return len(points) - 1
}

// daysSince measures a date offset in fractional days.
func daysSince(first, date time.Time) float64 {
	return date.Sub(first).Hours() / 24
}

// finiteOnly drops points whose close is NaN, infinite, or non-positive.
func finiteOnly(history []models.PricePoint) []models.PricePoint {
	out := make([]models.PricePoint, 0, len(history))
	for _, p := range history {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) || p.Close <= 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}
