// Package interfaces defines service contracts for Fathom
package interfaces

import (
	"context"

	"github.com/bobmcallan/fathom/internal/models"
)

// AnalysisService runs the scoring and forecast pipeline.
type AnalysisService interface {
	// Analyze produces a report for a ticker, serving a fresh cached copy
	// unless the request forces a refresh.
	Analyze(ctx context.Context, req AnalyzeRequest) (*models.AnalysisReport, error)

	// ForecastChart renders the forecast PNG for a ticker.
	ForecastChart(ctx context.Context, req AnalyzeRequest) ([]byte, error)

	// ListReports returns all cached reports, newest first.
	ListReports(ctx context.Context) ([]*models.AnalysisReport, error)

	// DeleteReports removes all cached reports for a ticker.
	// Returns the number removed.
	DeleteReports(ctx context.Context, ticker string) (int, error)

	// Search resolves free text to candidate symbols.
	Search(ctx context.Context, query string) ([]models.SymbolMatch, error)
}

// AnalyzeRequest selects what to analyze and how.
type AnalyzeRequest struct {
	Ticker  string
	Preset  int               // 5, 8, or 15; 0 uses the configured default
	Policy  models.PolicyName // empty uses the configured default
	Refresh bool              // bypass the cached report
}
