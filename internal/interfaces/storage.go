// Package interfaces defines service contracts for Fathom
package interfaces

import (
	"context"

	"github.com/bobmcallan/fathom/internal/models"
)

// StorageManager coordinates storage backends
type StorageManager interface {
	// ReportStore returns the report cache.
	ReportStore() ReportStore

	// Lifecycle
	Close() error
}

// ReportStore persists analysis reports keyed by ticker, preset, and policy.
type ReportStore interface {
	// GetReport retrieves one report. Absence is reported with the store
	// package's not-found sentinel so callers can branch on it.
	GetReport(ctx context.Context, ticker string, preset int, policy models.PolicyName) (*models.AnalysisReport, error)

	// SaveReport upserts a report under its StoreKey.
	SaveReport(ctx context.Context, report *models.AnalysisReport) error

	// ListReports returns all cached reports, newest first.
	ListReports(ctx context.Context) ([]*models.AnalysisReport, error)

	// DeleteReports removes every report for a ticker, returning the count.
	DeleteReports(ctx context.Context, ticker string) (int, error)

	Close() error
}
