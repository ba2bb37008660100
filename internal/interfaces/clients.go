// Package interfaces defines service contracts for Fathom
package interfaces

import (
	"context"

	"github.com/bobmcallan/fathom/internal/models"
)

// MarketDataProvider assembles the full per-ticker snapshot an analysis
// consumes: quote scalars, statement series, headlines, and price history.
type MarketDataProvider interface {
	// FetchSnapshot retrieves everything needed to analyze a ticker.
	// Failure here is fatal for the request; there is no partial snapshot.
	FetchSnapshot(ctx context.Context, ticker string) (*models.FinancialSnapshot, error)
}

// NewsProvider retrieves recent headlines for a ticker.
type NewsProvider interface {
	// FetchHeadlines returns up to models.MaxHeadlines recent items, oldest
	// first. An empty result is not an error.
	FetchHeadlines(ctx context.Context, ticker string) ([]models.Headline, error)
}

// PriceHistoryProvider retrieves daily closing prices.
type PriceHistoryProvider interface {
	// FetchDailyCloses returns daily closes over the lookback, oldest first.
	FetchDailyCloses(ctx context.Context, ticker string, lookbackYears int) ([]models.PricePoint, error)
}

// SymbolResolver maps free-text queries to candidate tickers.
type SymbolResolver interface {
	// Resolve searches for symbols matching a company name or ticker.
	Resolve(ctx context.Context, query string) ([]models.SymbolMatch, error)
}

// CommentaryClient produces narrative text for a finished report.
type CommentaryClient interface {
	// GenerateContent generates text from a prompt
	GenerateContent(ctx context.Context, prompt string) (string, error)

	// ReportCommentary writes a short narrative summary of a report.
	ReportCommentary(ctx context.Context, report *models.AnalysisReport) (string, error)
}
