package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/fathom/internal/clients/gemini"
	"github.com/bobmcallan/fathom/internal/clients/yahoo"
	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/services/analysis"
	"github.com/bobmcallan/fathom/internal/storage"
)

// App holds all initialized clients, storage, and the analysis service.
// It is the shared core used by cmd/fathom-server and cmd/fathom.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Storage     interfaces.StorageManager
	YahooClient *yahoo.Client
	Commentary  interfaces.CommentaryClient
	Analysis    interfaces.AnalysisService
	StartupTime time.Time

	schedulerCancel context.CancelFunc
	warmCacheCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and the analysis
// service. configPath may be empty, in which case the default resolution
// logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	// Get binary directory for self-contained operation
	binDir := getBinaryDir()

	// Load configuration - check provided path, FATHOM_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("FATHOM_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "fathom.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/fathom.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative badger path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	// Resolve relative log file path to binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	// Initialize logger
	logger := common.NewLoggerFromConfig(config.Logging)

	// Initialize report store
	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Initialize market data client
	yahooClient := yahoo.NewClient(
		yahoo.WithLogger(logger),
		yahoo.WithBaseURL(config.Providers.Yahoo.BaseURL),
		yahoo.WithRateLimit(config.Providers.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Providers.Yahoo.GetTimeout()),
	)

	// Initialize the optional commentary client
	var commentary interfaces.CommentaryClient
	if config.Commentary.Enabled {
		geminiKey, err := common.ResolveAPIKey("gemini_api_key", config.Commentary.APIKey)
		if err != nil {
			logger.Warn().Msg("Gemini API key not configured - report commentary will be unavailable")
		} else {
			client, err := gemini.NewClient(context.Background(), geminiKey,
				gemini.WithLogger(logger),
				gemini.WithModel(config.Commentary.Model),
			)
			if err != nil {
				logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
			} else {
				commentary = client
			}
		}
	}

	// The Yahoo client serves as snapshot provider, price history source,
	// and symbol resolver.
	analysisService := analysis.NewService(
		yahooClient,
		yahooClient,
		yahooClient,
		storageManager,
		commentary,
		config,
		logger,
	)

	a := &App{
		Config:      config,
		Logger:      logger,
		Storage:     storageManager,
		YahooClient: yahooClient,
		Commentary:  commentary,
		Analysis:    analysisService,
		StartupTime: startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: cancel scheduler, cancel warm cache, close storage.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.warmCacheCancel != nil {
		a.warmCacheCancel()
		a.warmCacheCancel = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}

// StartWarmCache launches the background cache warming goroutine.
func (a *App) StartWarmCache() {
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 5*time.Minute)
	a.warmCacheCancel = warmCancel
	go func() {
		defer warmCancel()
		warmCache(warmCtx, a.Analysis, a.Config.Watchlist, a.Logger)
	}()
}

// StartRefreshScheduler launches the background watchlist refresh goroutine.
func (a *App) StartRefreshScheduler() {
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	a.schedulerCancel = schedulerCancel
	go startRefreshScheduler(schedulerCtx, a.Analysis, a.Config, a.Logger)
}
