package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_DefaultPort(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 8080)
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Storage.Backend != "badger" {
		t.Errorf("Storage.Backend default = %q, want %q", cfg.Storage.Backend, "badger")
	}
	if cfg.Analysis.Preset != 5 {
		t.Errorf("Analysis.Preset default = %d, want 5", cfg.Analysis.Preset)
	}
	if cfg.Analysis.Policy != "aggregate" {
		t.Errorf("Analysis.Policy default = %q, want %q", cfg.Analysis.Policy, "aggregate")
	}
	if cfg.Analysis.SentimentThreshold != 0.05 {
		t.Errorf("Analysis.SentimentThreshold default = %v, want 0.05", cfg.Analysis.SentimentThreshold)
	}
	if cfg.Analysis.ForecastYears != 5 {
		t.Errorf("Analysis.ForecastYears default = %d, want 5", cfg.Analysis.ForecastYears)
	}
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("FATHOM_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
}

func TestConfig_StorageBackendEnvOverride(t *testing.T) {
	t.Setenv("FATHOM_STORAGE_BACKEND", "SURREAL")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Storage.Backend != "surreal" {
		t.Errorf("Storage.Backend = %q after env override, want %q", cfg.Storage.Backend, "surreal")
	}
}

func TestConfig_WatchlistEnvOverride(t *testing.T) {
	t.Setenv("FATHOM_WATCHLIST", "aapl, msft ,, tsla")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	want := []string{"AAPL", "MSFT", "TSLA"}
	if len(cfg.Watchlist) != len(want) {
		t.Fatalf("Watchlist = %v, want %v", cfg.Watchlist, want)
	}
	for i, ticker := range want {
		if cfg.Watchlist[i] != ticker {
			t.Errorf("Watchlist[%d] = %q, want %q", i, cfg.Watchlist[i], ticker)
		}
	}
}

func TestConfig_ValidateRejectsBadPolicy(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Analysis.Policy = "eager"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil for unknown policy, want error")
	}
}

func TestConfig_ValidateRejectsBadPreset(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Analysis.Preset = 7
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil for preset 7, want error")
	}
}

func TestConfig_ValidateRejectsOutOfRangeThreshold(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Analysis.SentimentThreshold = 0.3
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil for sentiment threshold 0.3, want error")
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("does-not-exist.toml")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fathom.toml")
	content := []byte("watchlist = [\"AAPL\"]\n\n[server]\nport = 9999\n\n[analysis]\npreset = 15\npolicy = \"gate\"\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Analysis.Preset != 15 {
		t.Errorf("Analysis.Preset = %d, want 15", cfg.Analysis.Preset)
	}
	if cfg.Analysis.Policy != "gate" {
		t.Errorf("Analysis.Policy = %q, want %q", cfg.Analysis.Policy, "gate")
	}
	if len(cfg.Watchlist) != 1 || cfg.Watchlist[0] != "AAPL" {
		t.Errorf("Watchlist = %v, want [AAPL]", cfg.Watchlist)
	}
}

func TestLoadConfig_InvalidFileValueRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fathom.toml")
	content := []byte("[analysis]\npreset = 9\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() = nil for preset 9, want validation error")
	}
}

func TestYahooConfig_GetTimeout_Default(t *testing.T) {
	cfg := &YahooConfig{Timeout: "not-a-duration"}
	if d := cfg.GetTimeout(); d != 30*time.Second {
		t.Errorf("GetTimeout() = %v, want 30s (fallback for invalid)", d)
	}
}

func TestYahooConfig_GetTimeout_Configured(t *testing.T) {
	cfg := &YahooConfig{Timeout: "5s"}
	if d := cfg.GetTimeout(); d != 5*time.Second {
		t.Errorf("GetTimeout() = %v, want 5s", d)
	}
}

func TestAnalysisConfig_GetRefreshInterval_Default(t *testing.T) {
	cfg := &AnalysisConfig{}
	if d := cfg.GetRefreshInterval(); d != 6*time.Hour {
		t.Errorf("GetRefreshInterval() = %v, want 6h (fallback)", d)
	}
}

func TestResolveAPIKey_EnvWins(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")

	key, err := ResolveAPIKey("gemini_api_key", "from-config")
	if err != nil {
		t.Fatalf("ResolveAPIKey() error = %v", err)
	}
	if key != "from-env" {
		t.Errorf("ResolveAPIKey() = %q, want %q", key, "from-env")
	}
}

func TestResolveAPIKey_FallbackWhenNoEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("FATHOM_GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	key, err := ResolveAPIKey("gemini_api_key", "from-config")
	if err != nil {
		t.Fatalf("ResolveAPIKey() error = %v", err)
	}
	if key != "from-config" {
		t.Errorf("ResolveAPIKey() = %q, want %q", key, "from-config")
	}
}

func TestResolveAPIKey_MissingEverywhere(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("FATHOM_GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	if _, err := ResolveAPIKey("gemini_api_key", ""); err == nil {
		t.Error("ResolveAPIKey() = nil error for missing key, want error")
	}
}
