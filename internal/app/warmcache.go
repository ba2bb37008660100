package app

import (
	"context"
	"os"
	"time"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
)

// warmCache pre-analyzes the configured watchlist on startup so the first
// user query is fast.
func warmCache(ctx context.Context, analysisService interfaces.AnalysisService, watchlist []string, logger *common.Logger) {
	// Check env var override
	if os.Getenv("FATHOM_WARM_CACHE") == "off" {
		logger.Info().Msg("Warm cache: disabled via FATHOM_WARM_CACHE=off")
		return
	}

	if len(watchlist) == 0 {
		logger.Info().Msg("Warm cache: no watchlist configured, skipping")
		return
	}

	start := time.Now()
	logger.Info().Int("tickers", len(watchlist)).Msg("Warm cache: starting")

	warmed := 0
	for _, ticker := range watchlist {
		if ctx.Err() != nil {
			logger.Info().Msg("Warm cache: cancelled")
			return
		}

		// Analyze is incremental: a fresh cached report is served without
		// touching the provider.
		if _, err := analysisService.Analyze(ctx, interfaces.AnalyzeRequest{Ticker: ticker}); err != nil {
			logger.Warn().Err(err).Str("ticker", ticker).Msg("Warm cache: analysis failed")
			continue
		}
		warmed++
	}

	logger.Info().
		Int("tickers", warmed).
		Dur("elapsed", time.Since(start)).
		Msg("Warm cache: complete")
}
