package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

const reportTable = "report"

// SurrealStore implements interfaces.ReportStore against a SurrealDB
// instance. Reports live in one SCHEMALESS table with the store key as
// the record ID.
type SurrealStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewSurrealStore connects to SurrealDB and prepares the report table.
func NewSurrealStore(logger *common.Logger, cfg common.StorageConfig) (*SurrealStore, error) {
	ctx := context.Background()

	db, err := surrealdb.New(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": cfg.Username,
		"pass": cfg.Password,
	}); err != nil {
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	// SurrealDB v3 errors on querying non-existent tables.
	sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", reportTable)
	if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
		return nil, fmt.Errorf("failed to define table %s: %w", reportTable, err)
	}

	logger.Info().
		Str("address", cfg.Address).
		Str("namespace", cfg.Namespace).
		Str("database", cfg.Database).
		Msg("SurrealDB report store initialized")

	return &SurrealStore{db: db, logger: logger}, nil
}

func (s *SurrealStore) GetReport(ctx context.Context, ticker string, preset int, policy models.PolicyName) (*models.AnalysisReport, error) {
	rid := surrealmodels.NewRecordID(reportTable, models.ReportKey(ticker, preset, policy))
	report, err := surrealdb.Select[models.AnalysisReport](ctx, s.db, rid)
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("%w for '%s' (%d-rule %s)", ErrReportNotFound, ticker, preset, policy)
		}
		return nil, fmt.Errorf("failed to select report for '%s': %w", ticker, err)
	}
	if report == nil || report.Ticker == "" {
		return nil, fmt.Errorf("%w for '%s' (%d-rule %s)", ErrReportNotFound, ticker, preset, policy)
	}
	return report, nil
}

func (s *SurrealStore) SaveReport(ctx context.Context, report *models.AnalysisReport) error {
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = time.Now()
	}

	sql := "UPSERT $rid CONTENT $report"
	vars := map[string]any{
		"rid":    surrealmodels.NewRecordID(reportTable, report.StoreKey()),
		"report": report,
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.AnalysisReport](ctx, s.db, sql, vars)
		if err == nil {
			s.logger.Debug().Str("ticker", report.Ticker).Int("preset", report.Preset).Msg("Report saved")
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save report after retries: %w", lastErr)
}

func (s *SurrealStore) ListReports(ctx context.Context) ([]*models.AnalysisReport, error) {
	sql := fmt.Sprintf("SELECT * FROM %s ORDER BY generated_at DESC", reportTable)

	results, err := surrealdb.Query[[]models.AnalysisReport](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	if results != nil && len(*results) > 0 {
		var mapped []*models.AnalysisReport
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
		return mapped, nil
	}
	return nil, nil
}

func (s *SurrealStore) DeleteReports(ctx context.Context, ticker string) (int, error) {
	sql := fmt.Sprintf("DELETE %s WHERE ticker = $ticker RETURN BEFORE", reportTable)
	vars := map[string]any{"ticker": ticker}

	results, err := surrealdb.Query[[]models.AnalysisReport](ctx, s.db, sql, vars)
	if err != nil {
		return 0, fmt.Errorf("failed to delete reports for '%s': %w", ticker, err)
	}

	count := 0
	if results != nil && len(*results) > 0 {
		count = len((*results)[0].Result)
	}

	s.logger.Debug().Str("ticker", ticker).Int("count", count).Msg("Reports deleted")
	return count, nil
}

func (s *SurrealStore) Close() error {
	s.db.Close(context.Background())
	return nil
}

// isNotFoundError reports whether a SurrealDB error indicates a missing
// record rather than a transport or query failure.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "no record")
}

// Compile-time check
var _ interfaces.ReportStore = (*SurrealStore)(nil)
