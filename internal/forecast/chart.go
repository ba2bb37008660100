package forecast

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/fathom/internal/models"
)

// RenderChart renders a PNG of observed closes with the modeled estimate
// and its confidence band. Four series: Close (blue solid), Estimate
// (orange solid), Lower/Upper bounds (gray dashed). Returns raw PNG bytes.
func RenderChart(ticker string, history []models.PricePoint, series *models.ForecastSeries) ([]byte, error) {
	if series == nil || len(series.Points) < 2 {
		return nil, fmt.Errorf("need a fitted forecast to chart")
	}
	if len(history) < 2 {
		return nil, fmt.Errorf("need at least 2 observed closes, got %d", len(history))
	}

	histX := make([]time.Time, len(history))
	histY := make([]float64, len(history))
	for i, p := range history {
		histX[i] = p.Date
		histY[i] = p.Close
	}

	modelX := make([]time.Time, len(series.Points))
	estimateY := make([]float64, len(series.Points))
	lowerY := make([]float64, len(series.Points))
	upperY := make([]float64, len(series.Points))
	for i, p := range series.Points {
		modelX[i] = p.Date
		estimateY[i] = p.Estimate
		lowerY[i] = p.Lower
		upperY[i] = p.Upper
	}

	closeSeries := chart.TimeSeries{
		Name: "Close",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 1.5,
		},
		XValues: histX,
		YValues: histY,
	}

	estimateSeries := chart.TimeSeries{
		Name: fmt.Sprintf("%d-Year Estimate", series.HorizonYears),
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("ea580c"), // orange-600
			StrokeWidth: 2.0,
		},
		XValues: modelX,
		YValues: estimateY,
	}

	boundStyle := chart.Style{
		StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
		StrokeWidth:     1.0,
		StrokeDashArray: []float64{5.0, 3.0},
	}
	lowerSeries := chart.TimeSeries{
		Name:    "Lower Bound",
		Style:   boundStyle,
		XValues: modelX,
		YValues: lowerY,
	}
	upperSeries := chart.TimeSeries{
		Name:    "Upper Bound",
		Style:   boundStyle,
		XValues: modelX,
		YValues: upperY,
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s Price Forecast", ticker),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			closeSeries,
			estimateSeries,
			lowerSeries,
			upperSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
