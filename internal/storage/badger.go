package storage

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

// BadgerStore implements interfaces.ReportStore using an embedded
// BadgerHold database. Reports are keyed by their store key, one slot
// per ticker, preset, and policy combination.
type BadgerStore struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewBadgerStore opens (creating if needed) the report store at path.
func NewBadgerStore(logger *common.Logger, path string) (*BadgerStore, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report store path %s: %w", path, err)
	}

	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil // Disable badger's internal logging

	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open report store at %s: %w", path, err)
	}

	logger.Debug().Str("path", path).Msg("Report store opened")

	return &BadgerStore{db: db, logger: logger}, nil
}

func (s *BadgerStore) GetReport(_ context.Context, ticker string, preset int, policy models.PolicyName) (*models.AnalysisReport, error) {
	var report models.AnalysisReport
	if err := s.db.Get(models.ReportKey(ticker, preset, policy), &report); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w for '%s' (%d-rule %s)", ErrReportNotFound, ticker, preset, policy)
		}
		return nil, fmt.Errorf("failed to get report for '%s': %w", ticker, err)
	}
	return &report, nil
}

func (s *BadgerStore) SaveReport(_ context.Context, report *models.AnalysisReport) error {
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = time.Now()
	}
	if err := s.db.Upsert(report.StoreKey(), report); err != nil {
		return fmt.Errorf("failed to save report for '%s': %w", report.Ticker, err)
	}
	s.logger.Debug().Str("ticker", report.Ticker).Int("preset", report.Preset).Msg("Report saved")
	return nil
}

func (s *BadgerStore) ListReports(_ context.Context) ([]*models.AnalysisReport, error) {
	var reports []models.AnalysisReport
	if err := s.db.Find(&reports, nil); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].GeneratedAt.After(reports[j].GeneratedAt)
	})

	result := make([]*models.AnalysisReport, len(reports))
	for i := range reports {
		result[i] = &reports[i]
	}
	return result, nil
}

func (s *BadgerStore) DeleteReports(_ context.Context, ticker string) (int, error) {
	var matches []models.AnalysisReport
	if err := s.db.Find(&matches, badgerhold.Where("Ticker").Eq(ticker)); err != nil {
		return 0, fmt.Errorf("failed to find reports for '%s': %w", ticker, err)
	}

	count := 0
	for _, m := range matches {
		if err := s.db.Delete(m.StoreKey(), models.AnalysisReport{}); err != nil && err != badgerhold.ErrNotFound {
			return count, fmt.Errorf("failed to delete report '%s': %w", m.StoreKey(), err)
		}
		count++
	}

	s.logger.Debug().Str("ticker", ticker).Int("count", count).Msg("Reports deleted")
	return count, nil
}

// Close shuts down the BadgerHold database.
func (s *BadgerStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check
var _ interfaces.ReportStore = (*BadgerStore)(nil)
