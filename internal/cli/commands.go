// Package cli implements the fathom command line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/fathom/internal/app"
	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fathom",
		Short: "Fathom - fundamental scoring and forecast engine",
		Long: `Fathom scores a company against a fundamentals checklist, classifies news
sentiment, and projects a five-year price trend from historical closes.
Reports are cached locally and refreshed on demand.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newReportsCmd())
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().String("config", "", "path to config file (defaults to fathom.toml beside the binary)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log at the configured level instead of warnings only")

	return rootCmd
}

// newAnalyzeCmd creates the analyze command
func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze TICKER",
		Short: "Score a ticker and print its report",
		Long: `Run the full analysis pipeline for a ticker: checklist scorecard,
composite score with verdict, news sentiment, and the price forecast.
A fresh cached report is served unless --refresh is given.
Example: fathom analyze AAPL --rules 8 --policy gate`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, _ := cmd.Flags().GetInt("rules")
			policy, _ := cmd.Flags().GetString("policy")
			refresh, _ := cmd.Flags().GetBool("refresh")
			asJSON, _ := cmd.Flags().GetBool("json")
			chartPath, _ := cmd.Flags().GetString("chart")

			return runAnalyze(cmd, args[0], rules, policy, refresh, asJSON, chartPath)
		},
	}

	cmd.Flags().Int("rules", 0, "checklist preset: 5, 8, or 15 (configured default when omitted)")
	cmd.Flags().String("policy", "", "scoring policy: aggregate or gate (configured default when omitted)")
	cmd.Flags().Bool("refresh", false, "bypass the cached report")
	cmd.Flags().Bool("json", false, "print the raw report as JSON")
	cmd.Flags().String("chart", "", "write the forecast chart PNG to this path")

	return cmd
}

// newSearchCmd creates the search command
func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Resolve free text to candidate ticker symbols",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0])
		},
	}
}

// newReportsCmd creates the reports command with its delete subcommand
func newReportsCmd() *cobra.Command {
	reportsCmd := &cobra.Command{
		Use:   "reports",
		Short: "List cached analysis reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			ticker, _ := cmd.Flags().GetString("ticker")
			return runReportList(cmd, ticker)
		},
	}
	reportsCmd.Flags().String("ticker", "", "only show reports for this ticker")

	reportsCmd.AddCommand(&cobra.Command{
		Use:   "delete TICKER",
		Short: "Delete all cached reports for a ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReportDelete(cmd, args[0])
		},
	})

	return reportsCmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "fathom", common.GetFullVersion())
		},
	}
}

// openApp initializes the application for a CLI invocation. Unless --verbose
// is given, console logging is capped at warnings so command output stays
// readable.
func openApp(cmd *cobra.Command) (*app.App, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	if !verbose && os.Getenv("FATHOM_LOG_LEVEL") == "" {
		os.Setenv("FATHOM_LOG_LEVEL", "warn")
	}

	return app.NewApp(configPath)
}

// runAnalyze executes the analysis pipeline and renders the result
func runAnalyze(cmd *cobra.Command, ticker string, rules int, policy string, refresh, asJSON bool, chartPath string) error {
	req, err := buildAnalyzeRequest(ticker, rules, policy, refresh)
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer a.Close()

	report, err := a.Analysis.Analyze(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", strings.ToUpper(ticker), err)
	}

	if asJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		fmt.Fprint(cmd.OutOrStdout(), renderReport(report))
	}

	if chartPath != "" {
		png, err := a.Analysis.ForecastChart(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("render chart: %w", err)
		}
		if err := os.WriteFile(chartPath, png, 0644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderInfo(fmt.Sprintf("Forecast chart written to %s", chartPath)))
	}

	return nil
}

// buildAnalyzeRequest validates CLI flags and maps them onto a request.
// Zero values defer to the configured defaults.
func buildAnalyzeRequest(ticker string, rules int, policy string, refresh bool) (interfaces.AnalyzeRequest, error) {
	req := interfaces.AnalyzeRequest{
		Ticker:  ticker,
		Refresh: refresh,
	}

	switch rules {
	case 0, 5, 8, 15:
		req.Preset = rules
	default:
		return req, fmt.Errorf("invalid --rules %d: must be 5, 8, or 15", rules)
	}

	switch strings.ToLower(policy) {
	case "":
	case string(models.PolicyAggregate):
		req.Policy = models.PolicyAggregate
	case string(models.PolicyGate):
		req.Policy = models.PolicyGate
	default:
		return req, fmt.Errorf("invalid --policy %q: must be aggregate or gate", policy)
	}

	return req, nil
}

// runSearch resolves a query to candidate symbols and prints them
func runSearch(cmd *cobra.Command, query string) error {
	a, err := openApp(cmd)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer a.Close()

	matches, err := a.Analysis.Search(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("search %q: %w", query, err)
	}

	fmt.Fprint(cmd.OutOrStdout(), renderSearchResults(query, matches))
	return nil
}

// runReportList prints the cached report summaries
func runReportList(cmd *cobra.Command, ticker string) error {
	a, err := openApp(cmd)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer a.Close()

	reports, err := a.Analysis.ListReports(cmd.Context())
	if err != nil {
		return fmt.Errorf("list reports: %w", err)
	}

	if ticker != "" {
		filtered := reports[:0]
		for _, r := range reports {
			if strings.EqualFold(r.Ticker, ticker) {
				filtered = append(filtered, r)
			}
		}
		reports = filtered
	}

	fmt.Fprint(cmd.OutOrStdout(), renderReportList(reports))
	return nil
}

// runReportDelete removes cached reports for a ticker
func runReportDelete(cmd *cobra.Command, ticker string) error {
	a, err := openApp(cmd)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer a.Close()

	count, err := a.Analysis.DeleteReports(cmd.Context(), ticker)
	if err != nil {
		return fmt.Errorf("delete reports for %s: %w", strings.ToUpper(ticker), err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderInfo(fmt.Sprintf("Deleted %d report(s) for %s", count, strings.ToUpper(ticker))))
	return nil
}
