package app

import (
	"context"
	"time"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
)

// startRefreshScheduler re-analyzes the watchlist on a fixed interval so
// cached reports stay inside the freshness window.
func startRefreshScheduler(ctx context.Context, analysisService interfaces.AnalysisService, config *common.Config, logger *common.Logger) {
	interval := config.Analysis.GetRefreshInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", interval).Msg("Refresh scheduler: started")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Refresh scheduler: stopped")
			return
		case <-ticker.C:
			refreshWatchlist(ctx, analysisService, config.Watchlist, logger)
		}
	}
}

func refreshWatchlist(ctx context.Context, analysisService interfaces.AnalysisService, watchlist []string, logger *common.Logger) {
	if len(watchlist) == 0 {
		return
	}

	start := time.Now()

	refreshed := 0
	for _, ticker := range watchlist {
		if ctx.Err() != nil {
			return
		}

		// Stale reports regenerate; fresh ones are served from cache.
		if _, err := analysisService.Analyze(ctx, interfaces.AnalyzeRequest{Ticker: ticker}); err != nil {
			logger.Warn().Err(err).Str("ticker", ticker).Msg("Watchlist refresh: analysis failed")
			continue
		}
		refreshed++
	}

	logger.Info().
		Int("tickers", refreshed).
		Dur("elapsed", time.Since(start)).
		Msg("Watchlist refresh: complete")
}
