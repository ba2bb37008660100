package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	config := `
environment = "test"
watchlist = ["AAPL"]

[storage]
backend = "badger"
path = "` + filepath.Join(dir, "reports") + `"

[logging]
level = "error"
`
	configPath := filepath.Join(dir, "fathom.toml")
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}

// TestNewApp_InitializesAllServices verifies that NewApp creates an App with
// storage, clients, and the analysis service initialized and non-nil.
func TestNewApp_InitializesAllServices(t *testing.T) {
	configPath := writeTestConfig(t)

	a, err := NewApp(configPath)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer a.Close()

	if a.Config == nil {
		t.Error("Config is nil")
	}
	if a.Logger == nil {
		t.Error("Logger is nil")
	}
	if a.Storage == nil {
		t.Error("Storage is nil")
	}
	if a.YahooClient == nil {
		t.Error("YahooClient is nil")
	}
	if a.Analysis == nil {
		t.Error("Analysis is nil")
	}
	if a.Commentary != nil {
		t.Error("Commentary should be nil when commentary is disabled")
	}
	if a.StartupTime.IsZero() {
		t.Error("StartupTime is zero")
	}
	if a.Config.Environment != "test" {
		t.Errorf("expected environment test, got %s", a.Config.Environment)
	}
}

func TestNewApp_InvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "fathom.toml")
	if err := os.WriteFile(configPath, []byte("not [valid toml"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	if _, err := NewApp(configPath); err == nil {
		t.Fatal("expected error for invalid config file")
	}
}

func TestAppClose_Idempotent(t *testing.T) {
	configPath := writeTestConfig(t)

	a, err := NewApp(configPath)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}

	a.Close()
	a.Close() // second close must not panic

	if a.Storage != nil {
		t.Error("Storage should be nil after Close")
	}
}

// fakeAnalysisService records analyzed tickers for warm cache and scheduler tests.
type fakeAnalysisService struct {
	mu       sync.Mutex
	analyzed []string
	err      error
}

func (f *fakeAnalysisService) Analyze(ctx context.Context, req interfaces.AnalyzeRequest) (*models.AnalysisReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzed = append(f.analyzed, req.Ticker)
	if f.err != nil {
		return nil, f.err
	}
	return &models.AnalysisReport{Ticker: req.Ticker, GeneratedAt: time.Now()}, nil
}

func (f *fakeAnalysisService) ForecastChart(ctx context.Context, req interfaces.AnalyzeRequest) ([]byte, error) {
	return nil, nil
}

func (f *fakeAnalysisService) ListReports(ctx context.Context) ([]*models.AnalysisReport, error) {
	return nil, nil
}

func (f *fakeAnalysisService) DeleteReports(ctx context.Context, ticker string) (int, error) {
	return 0, nil
}

func (f *fakeAnalysisService) Search(ctx context.Context, query string) ([]models.SymbolMatch, error) {
	return nil, nil
}

func (f *fakeAnalysisService) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.analyzed))
	copy(out, f.analyzed)
	return out
}

func TestWarmCache_AnalyzesWatchlist(t *testing.T) {
	fake := &fakeAnalysisService{}
	logger := common.NewSilentLogger()

	warmCache(context.Background(), fake, []string{"AAPL", "MSFT"}, logger)

	calls := fake.calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 analyses, got %d: %v", len(calls), calls)
	}
	if calls[0] != "AAPL" || calls[1] != "MSFT" {
		t.Errorf("expected [AAPL MSFT], got %v", calls)
	}
}

func TestWarmCache_DisabledByEnv(t *testing.T) {
	t.Setenv("FATHOM_WARM_CACHE", "off")

	fake := &fakeAnalysisService{}
	warmCache(context.Background(), fake, []string{"AAPL"}, common.NewSilentLogger())

	if len(fake.calls()) != 0 {
		t.Errorf("expected no analyses when disabled, got %v", fake.calls())
	}
}

func TestWarmCache_EmptyWatchlist(t *testing.T) {
	fake := &fakeAnalysisService{}
	warmCache(context.Background(), fake, nil, common.NewSilentLogger())

	if len(fake.calls()) != 0 {
		t.Errorf("expected no analyses for empty watchlist, got %v", fake.calls())
	}
}

func TestWarmCache_ContinuesPastFailures(t *testing.T) {
	fake := &fakeAnalysisService{err: context.DeadlineExceeded}
	warmCache(context.Background(), fake, []string{"AAPL", "MSFT", "GOOG"}, common.NewSilentLogger())

	// Every ticker is attempted even when analyses fail.
	if len(fake.calls()) != 3 {
		t.Errorf("expected 3 attempts, got %d", len(fake.calls()))
	}
}

func TestWarmCache_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeAnalysisService{}
	warmCache(ctx, fake, []string{"AAPL", "MSFT"}, common.NewSilentLogger())

	if len(fake.calls()) != 0 {
		t.Errorf("expected no analyses after cancel, got %v", fake.calls())
	}
}

func TestRefreshWatchlist_AnalyzesAllTickers(t *testing.T) {
	fake := &fakeAnalysisService{}
	refreshWatchlist(context.Background(), fake, []string{"AAPL", "MSFT"}, common.NewSilentLogger())

	if len(fake.calls()) != 2 {
		t.Fatalf("expected 2 analyses, got %d", len(fake.calls()))
	}
}

func TestStartRefreshScheduler_TicksAndStops(t *testing.T) {
	fake := &fakeAnalysisService{}
	cfg := common.NewDefaultConfig()
	cfg.Watchlist = []string{"AAPL"}
	cfg.Analysis.RefreshInterval = "10ms"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		startRefreshScheduler(ctx, fake, cfg, common.NewSilentLogger())
		close(done)
	}()

	// Wait for at least one tick to fire.
	deadline := time.After(2 * time.Second)
	for len(fake.calls()) == 0 {
		select {
		case <-deadline:
			t.Fatal("scheduler never ticked")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestStartWarmCache_RunsInBackground(t *testing.T) {
	configPath := writeTestConfig(t)

	a, err := NewApp(configPath)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer a.Close()

	fake := &fakeAnalysisService{}
	a.Analysis = fake
	a.StartWarmCache()

	deadline := time.After(2 * time.Second)
	for len(fake.calls()) == 0 {
		select {
		case <-deadline:
			t.Fatal("warm cache never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
