package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fathom/internal/models"
)

func dailyHistory(start time.Time, closes []float64) []models.PricePoint {
	points := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = models.PricePoint{Date: start.AddDate(0, 0, i), Close: c}
	}
	return points
}

func linearCloses(n int, base, slope float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = base + slope*float64(i)
	}
	return closes
}

func TestForecastInsufficientData(t *testing.T) {
	start := time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC)
	history := dailyHistory(start, linearCloses(99, 100, 0.1))

	engine := NewEngine(5)
	series, err := engine.Forecast(history)
	assert.Nil(t, series)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestForecastEmptyHistory(t *testing.T) {
	engine := NewEngine(5)
	series, err := engine.Forecast(nil)
	assert.Nil(t, series)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestForecastRecoversLinearTrend(t *testing.T) {
	start := time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC)
	history := dailyHistory(start, linearCloses(400, 100, 0.1))

	engine := NewEngine(1)
	series, err := engine.Forecast(history)
	require.NoError(t, err)
	require.NotNil(t, series)

	assert.Len(t, series.Points, 400+365)
	assert.Equal(t, 1, series.HorizonYears)

	// Noise-free line: the final estimate continues the slope.
	finalOffset := float64(399 + 365)
	assert.InDelta(t, 100+0.1*finalOffset, series.FinalEstimate, 1.0)
	assert.Greater(t, series.ROI, 0.0)
}

func TestForecastFlatSeries(t *testing.T) {
	start := time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC)
	history := dailyHistory(start, linearCloses(200, 100, 0))

	engine := NewEngine(1)
	series, err := engine.Forecast(history)
	require.NoError(t, err)

	assert.InDelta(t, 100, series.FinalEstimate, 1.0)
	assert.InDelta(t, 0, series.ROI, 2.0)

	// A flat series leaves almost no residual, so the band stays tight.
	last := series.Points[len(series.Points)-1]
	assert.Less(t, last.Upper-last.Lower, 1.0)
}

func TestForecastAnchorSemantics(t *testing.T) {
	start := time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC)
	history := dailyHistory(start, linearCloses(400, 100, 0.1))

	engine := NewEngine(1)
	series, err := engine.Forecast(history)
	require.NoError(t, err)

	last := history[len(history)-1].Date
	target := last.AddDate(-1, 0, 0)

	idx := series.AnchorIndex
	require.GreaterOrEqual(t, idx, 0)
	require.Less(t, idx, len(series.Points))
	assert.False(t, series.Points[idx].Date.Before(target), "anchor date before target")
	if idx > 0 {
		assert.True(t, series.Points[idx-1].Date.Before(target), "anchor not the first point past target")
	}

	assert.Equal(t, series.Points[idx].Estimate, series.AnchorEstimate)
	wantROI := (series.FinalEstimate - series.AnchorEstimate) / series.AnchorEstimate * 100
	assert.InDelta(t, wantROI, series.ROI, 1e-9)
}

func TestForecastBoundsSymmetric(t *testing.T) {
	start := time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC)
	closes := make([]float64, 300)
	for i := range closes {
		// Trend plus a visible yearly swing.
		closes[i] = 100 + 0.05*float64(i) + 5*math.Sin(2*math.Pi*float64(i)/365.25)
	}
	history := dailyHistory(start, closes)

	engine := NewEngine(1)
	series, err := engine.Forecast(history)
	require.NoError(t, err)

	for _, p := range series.Points {
		assert.InDelta(t, p.Estimate-p.Lower, p.Upper-p.Estimate, 1e-9)
		assert.LessOrEqual(t, p.Lower, p.Estimate)
		assert.GreaterOrEqual(t, p.Upper, p.Estimate)
	}
}

func TestForecastSkipsNonFiniteCloses(t *testing.T) {
	start := time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC)
	history := dailyHistory(start, linearCloses(120, 100, 0.1))
	history = append(history,
		models.PricePoint{Date: start.AddDate(0, 0, 130), Close: math.NaN()},
		models.PricePoint{Date: start.AddDate(0, 0, 131), Close: math.Inf(1)},
		models.PricePoint{Date: start.AddDate(0, 0, 132), Close: -4},
	)

	engine := NewEngine(1)
	series, err := engine.Forecast(history)
	require.NoError(t, err)
	assert.Len(t, series.Points, 120+365)
}

func TestForecastDeterministic(t *testing.T) {
	start := time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC)
	history := dailyHistory(start, linearCloses(150, 50, 0.2))

	engine := NewEngine(1)
	first, err := engine.Forecast(history)
	require.NoError(t, err)
	second, err := engine.Forecast(history)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNewEngineClampsHorizon(t *testing.T) {
	start := time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC)
	history := dailyHistory(start, linearCloses(120, 100, 0.1))

	for _, bad := range []int{0, -3, 11} {
		series, err := NewEngine(bad).Forecast(history)
		require.NoError(t, err)
		assert.Equal(t, 5, series.HorizonYears, "horizon %d should clamp to 5", bad)
	}

	series, err := NewEngine(3).Forecast(history)
	require.NoError(t, err)
	assert.Equal(t, 3, series.HorizonYears)
}
