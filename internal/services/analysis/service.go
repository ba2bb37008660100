// Package analysis orchestrates the scoring and forecast pipeline: snapshot
// fetch, metric derivation, checklist evaluation, sentiment, forecast, and
// optional commentary, with report caching in front.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/fathom/internal/checklist"
	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/forecast"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/metrics"
	"github.com/bobmcallan/fathom/internal/models"
	"github.com/bobmcallan/fathom/internal/sentiment"
	"github.com/bobmcallan/fathom/internal/storage"
)

// Service implements AnalysisService
type Service struct {
	provider   interfaces.MarketDataProvider
	history    interfaces.PriceHistoryProvider
	resolver   interfaces.SymbolResolver
	storage    interfaces.StorageManager
	commentary interfaces.CommentaryClient // nil when commentary is disabled
	config     *common.Config
	logger     *common.Logger

	classifier *sentiment.Classifier
	engine     *forecast.Engine
}

// NewService creates a new analysis service
func NewService(
	provider interfaces.MarketDataProvider,
	history interfaces.PriceHistoryProvider,
	resolver interfaces.SymbolResolver,
	storage interfaces.StorageManager,
	commentary interfaces.CommentaryClient,
	config *common.Config,
	logger *common.Logger,
) *Service {
	return &Service{
		provider:   provider,
		history:    history,
		resolver:   resolver,
		storage:    storage,
		commentary: commentary,
		config:     config,
		logger:     logger,
		classifier: sentiment.NewClassifier(sentiment.NewVaderScorer(), config.Analysis.SentimentThreshold),
		engine:     forecast.NewEngine(config.Analysis.ForecastYears),
	}
}

// Analyze produces a report for a ticker, serving a fresh cached copy
// unless the request forces a refresh.
func (s *Service) Analyze(ctx context.Context, req interfaces.AnalyzeRequest) (*models.AnalysisReport, error) {
	ticker, preset, policy, err := s.resolveRequest(req)
	if err != nil {
		return nil, err
	}

	rules, err := checklist.PresetRules(preset)
	if err != nil {
		return nil, err
	}

	// Step 1: Serve from cache when fresh
	if !req.Refresh {
		cached, err := s.storage.ReportStore().GetReport(ctx, ticker, preset, policy)
		if err == nil && common.IsFresh(cached.GeneratedAt, common.FreshnessReport) {
			s.logger.Debug().Str("ticker", ticker).Time("generated_at", cached.GeneratedAt).Msg("Serving cached report")
			return cached, nil
		}
		if err != nil && !errors.Is(err, storage.ErrReportNotFound) {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Report cache lookup failed (continuing)")
		}
	}

	s.logger.Info().Str("ticker", ticker).Int("preset", preset).Str("policy", string(policy)).Msg("Analyzing ticker")

	// Step 2: Fetch the snapshot
	snap, err := s.provider.FetchSnapshot(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}

	// Step 3: Derive metrics and evaluate the checklist
	values := metrics.ComputeAll(snap)
	scorecard := checklist.Evaluate(rules, values, policy)

	// Step 4: Classify headline sentiment
	signal := s.classifier.Classify(snap.Headlines)

	// Step 5: Forecast; thin history degrades to a note, never an error
	var (
		series *models.ForecastSeries
		note   string
	)
	series, err = s.engine.Forecast(snap.PriceHistory)
	if err != nil {
		series = nil
		note = err.Error()
		if errors.Is(err, forecast.ErrInsufficientData) {
			s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Forecast skipped")
		} else {
			s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Forecast failed (continuing)")
		}
	}

	report := &models.AnalysisReport{
		Ticker:       ticker,
		Name:         snap.Name,
		Currency:     snap.Currency,
		CurrentPrice: snap.CurrentPrice,
		Preset:       preset,
		Policy:       policy,
		Scorecard:    scorecard,
		Sentiment:    signal,
		Forecast:     series,
		ForecastNote: note,
		GeneratedAt:  time.Now(),
	}

	// Step 6: Optional commentary
	if s.commentary != nil {
		text, err := s.commentary.ReportCommentary(ctx, report)
		if err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Commentary generation failed (continuing)")
		} else {
			report.Commentary = text
		}
	}

	// Step 7: Cache the report
	if err := s.storage.ReportStore().SaveReport(ctx, report); err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to cache report (continuing)")
	}

	s.logger.Info().
		Str("ticker", ticker).
		Int("score", scorecard.Score).
		Int("maximum", scorecard.Maximum).
		Str("verdict", string(scorecard.Verdict)).
		Str("sentiment", string(signal.Label)).
		Msg("Analysis complete")

	return report, nil
}

// ForecastChart renders the forecast PNG for a ticker from fresh history.
func (s *Service) ForecastChart(ctx context.Context, req interfaces.AnalyzeRequest) ([]byte, error) {
	ticker, err := normalizeTicker(req.Ticker)
	if err != nil {
		return nil, err
	}

	history, err := s.history.FetchDailyCloses(ctx, ticker, s.config.Analysis.LookbackYears)
	if err != nil {
		return nil, fmt.Errorf("fetch price history: %w", err)
	}

	series, err := s.engine.Forecast(history)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", ticker, err)
	}

	return forecast.RenderChart(ticker, history, series)
}

// ListReports returns all cached reports, newest first.
func (s *Service) ListReports(ctx context.Context) ([]*models.AnalysisReport, error) {
	return s.storage.ReportStore().ListReports(ctx)
}

// DeleteReports removes all cached reports for a ticker.
func (s *Service) DeleteReports(ctx context.Context, ticker string) (int, error) {
	normalized, err := normalizeTicker(ticker)
	if err != nil {
		return 0, err
	}

	count, err := s.storage.ReportStore().DeleteReports(ctx, normalized)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Str("ticker", normalized).Int("count", count).Msg("Reports deleted")
	return count, nil
}

// Search resolves free text to candidate symbols.
func (s *Service) Search(ctx context.Context, query string) ([]models.SymbolMatch, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("search query required")
	}
	return s.resolver.Resolve(ctx, q)
}

// resolveRequest normalizes the ticker and fills preset and policy defaults
// from configuration.
func (s *Service) resolveRequest(req interfaces.AnalyzeRequest) (string, int, models.PolicyName, error) {
	ticker, err := normalizeTicker(req.Ticker)
	if err != nil {
		return "", 0, "", err
	}

	preset := req.Preset
	if preset == 0 {
		preset = s.config.Analysis.Preset
	}

	policy := req.Policy
	if policy == "" {
		policy = models.PolicyName(strings.ToLower(s.config.Analysis.Policy))
	}
	switch policy {
	case models.PolicyAggregate, models.PolicyGate:
	default:
		return "", 0, "", fmt.Errorf("unknown scoring policy: %s (supported: aggregate, gate)", policy)
	}

	return ticker, preset, policy, nil
}

func normalizeTicker(raw string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	if ticker == "" {
		return "", fmt.Errorf("ticker required")
	}
	return ticker, nil
}

// Ensure Service implements AnalysisService
var _ interfaces.AnalysisService = (*Service)(nil)
