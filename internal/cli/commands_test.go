package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bobmcallan/fathom/internal/models"
)

func TestNewRootCmd_Subcommands(t *testing.T) {
	rootCmd := NewRootCmd()

	want := map[string]bool{
		"analyze": false,
		"search":  false,
		"reports": false,
		"version": false,
	}
	for _, sub := range rootCmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("root command missing %q subcommand", name)
		}
	}
}

func TestBuildAnalyzeRequest_Defaults(t *testing.T) {
	req, err := buildAnalyzeRequest("AAPL", 0, "", false)
	if err != nil {
		t.Fatalf("buildAnalyzeRequest failed: %v", err)
	}

	if req.Ticker != "AAPL" {
		t.Errorf("Expected ticker AAPL, got %q", req.Ticker)
	}
	if req.Preset != 0 {
		t.Errorf("Expected zero preset to defer to config, got %d", req.Preset)
	}
	if req.Policy != "" {
		t.Errorf("Expected empty policy to defer to config, got %q", req.Policy)
	}
	if req.Refresh {
		t.Error("Expected refresh false by default")
	}
}

func TestBuildAnalyzeRequest_Explicit(t *testing.T) {
	req, err := buildAnalyzeRequest("msft", 15, "GATE", true)
	if err != nil {
		t.Fatalf("buildAnalyzeRequest failed: %v", err)
	}

	if req.Preset != 15 {
		t.Errorf("Expected preset 15, got %d", req.Preset)
	}
	if req.Policy != models.PolicyGate {
		t.Errorf("Expected gate policy, got %q", req.Policy)
	}
	if !req.Refresh {
		t.Error("Expected refresh true")
	}
}

func TestBuildAnalyzeRequest_InvalidFlags(t *testing.T) {
	cases := []struct {
		name   string
		rules  int
		policy string
	}{
		{"unsupported rule count", 7, ""},
		{"negative rule count", -5, ""},
		{"unknown policy", 0, "strict"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := buildAnalyzeRequest("AAPL", tc.rules, tc.policy, false); err == nil {
				t.Errorf("Expected error for rules=%d policy=%q", tc.rules, tc.policy)
			}
		})
	}
}

func TestAnalyzeCmd_RejectsInvalidRules(t *testing.T) {
	rootCmd := NewRootCmd()
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"analyze", "AAPL", "--rules", "7"})

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("Expected error for --rules 7")
	}
	if !strings.Contains(err.Error(), "invalid --rules") {
		t.Errorf("Expected rules validation error, got: %v", err)
	}
}

func TestAnalyzeCmd_RequiresTicker(t *testing.T) {
	rootCmd := NewRootCmd()
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"analyze"})

	if err := rootCmd.Execute(); err == nil {
		t.Fatal("Expected error when ticker argument is missing")
	}
}

func TestVersionCmd_PrintsVersion(t *testing.T) {
	var out bytes.Buffer
	rootCmd := NewRootCmd()
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"version"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(out.String(), "fathom") {
		t.Errorf("Expected version output to name the binary, got %q", out.String())
	}
}
