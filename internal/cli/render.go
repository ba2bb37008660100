package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bobmcallan/fathom/internal/models"
)

// Styles shared by the renderers. Pass rules are green, failed rules red,
// and rules without data dim gray.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	passStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10B981"))

	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EF4444"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6"))

	verdictColors = map[models.VerdictTier]lipgloss.Color{
		models.VerdictHigh:   lipgloss.Color("#10B981"),
		models.VerdictMedium: lipgloss.Color("#F59E0B"),
		models.VerdictLow:    lipgloss.Color("#EF4444"),
	}
)

// renderReport formats a full analysis report for the terminal.
func renderReport(report *models.AnalysisReport) string {
	var sb strings.Builder

	title := report.Ticker
	if report.Name != "" {
		title = fmt.Sprintf("%s  %s", report.Ticker, report.Name)
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")

	if report.CurrentPrice > 0 {
		price := fmt.Sprintf("Price: %.2f", report.CurrentPrice)
		if report.Currency != "" {
			price += " " + report.Currency
		}
		sb.WriteString(price)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(renderScorecard(&report.Scorecard, report.Preset, report.Policy))
	sb.WriteString("\n")
	sb.WriteString(renderSentiment(&report.Sentiment))
	sb.WriteString("\n")
	sb.WriteString(renderForecast(report.Forecast, report.ForecastNote))

	if report.Commentary != "" {
		sb.WriteString("\n")
		sb.WriteString(titleStyle.Render("Commentary"))
		sb.WriteString("\n")
		sb.WriteString(report.Commentary)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("Generated %s", report.GeneratedAt.Format("2006-01-02 15:04 MST"))))
	sb.WriteString("\n")

	return sb.String()
}

// renderScorecard formats the checklist table and verdict banner.
func renderScorecard(sc *models.Scorecard, preset int, policy models.PolicyName) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Scorecard (%d rules, %s policy)", preset, policy)))
	sb.WriteString("\n")

	for _, check := range sc.Checks {
		sb.WriteString(fmt.Sprintf("  %s  %-34s %12s  %s %s\n",
			statusBadge(check.Status),
			check.Label,
			check.Display,
			check.Comparator,
			formatThreshold(check.Threshold),
		))
	}

	banner := fmt.Sprintf("VERDICT: %s  %d/%d", strings.ToUpper(string(sc.Verdict)), sc.Score, sc.Maximum)
	color, ok := verdictColors[sc.Verdict]
	if !ok {
		color = lipgloss.Color("#6B7280")
	}
	bannerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(color).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 2)
	sb.WriteString(bannerStyle.Render(banner))
	sb.WriteString("\n")

	return sb.String()
}

// renderSentiment formats the news sentiment section.
func renderSentiment(signal *models.SentimentSignal) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Sentiment"))
	sb.WriteString("\n")

	label := string(signal.Label)
	if signal.Strength != "" {
		label = fmt.Sprintf("%s (%s)", label, signal.Strength)
	}

	var styled string
	switch signal.Label {
	case models.SentimentPositive:
		styled = passStyle.Render(label)
	case models.SentimentNegative:
		styled = failStyle.Render(label)
	default:
		styled = dimStyle.Render(label)
	}
	sb.WriteString("  " + styled + "\n")
	sb.WriteString("  " + signal.Rationale + "\n")

	if signal.AveragePolarity.Valid {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  %d headline(s), average polarity %.3f",
			signal.HeadlineCount, signal.AveragePolarity.Float64)))
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderForecast formats the projection section, or the note explaining
// why no forecast was produced.
func renderForecast(series *models.ForecastSeries, note string) string {
	var sb strings.Builder

	if series == nil {
		sb.WriteString(titleStyle.Render("Forecast"))
		sb.WriteString("\n")
		if note == "" {
			note = "no forecast available"
		}
		sb.WriteString(dimStyle.Render("  " + note))
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Forecast (%d-year trend)", series.HorizonYears)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  Baseline estimate    %12.2f\n", series.AnchorEstimate))
	sb.WriteString(fmt.Sprintf("  Horizon estimate     %12.2f\n", series.FinalEstimate))

	roi := fmt.Sprintf("%+.1f%%", series.ROI)
	if series.ROI >= 0 {
		roi = passStyle.Render(roi)
	} else {
		roi = failStyle.Render(roi)
	}
	sb.WriteString(fmt.Sprintf("  Modeled return       %12s\n", roi))

	return sb.String()
}

// renderSearchResults formats symbol matches as a table.
func renderSearchResults(query string, matches []models.SymbolMatch) string {
	var sb strings.Builder

	if len(matches) == 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("No matches for %q", query)))
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Matches for %q (%d)", query, len(matches))))
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  %-10s %-36s %-12s %s", "SYMBOL", "NAME", "EXCHANGE", "TYPE")))
	sb.WriteString("\n")

	for _, m := range matches {
		sb.WriteString(fmt.Sprintf("  %-10s %-36s %-12s %s\n", m.Symbol, m.Name, m.Exchange, m.Type))
	}

	return sb.String()
}

// renderReportList formats cached report summaries as a table.
func renderReportList(reports []*models.AnalysisReport) string {
	var sb strings.Builder

	if len(reports) == 0 {
		sb.WriteString(dimStyle.Render("No cached reports"))
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Cached reports (%d)", len(reports))))
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  %-10s %5s  %-10s %6s  %-8s %s", "TICKER", "RULES", "POLICY", "SCORE", "VERDICT", "GENERATED")))
	sb.WriteString("\n")

	for _, r := range reports {
		score := fmt.Sprintf("%d/%d", r.Scorecard.Score, r.Scorecard.Maximum)
		sb.WriteString(fmt.Sprintf("  %-10s %5d  %-10s %6s  %-8s %s\n",
			r.Ticker,
			r.Preset,
			r.Policy,
			score,
			r.Scorecard.Verdict,
			r.GeneratedAt.Format("2006-01-02 15:04"),
		))
	}

	return sb.String()
}

// renderInfo formats a one-line status message.
func renderInfo(message string) string {
	return infoStyle.Render(message)
}

// statusBadge returns the fixed-width colored badge for a check outcome.
// Padding happens before styling so escape codes do not skew alignment.
func statusBadge(status models.CheckStatus) string {
	switch status {
	case models.CheckPass:
		return passStyle.Render("PASS")
	case models.CheckFail:
		return failStyle.Render("FAIL")
	default:
		return dimStyle.Render("N/A ")
	}
}

// formatThreshold trims trailing zeros from a rule threshold.
func formatThreshold(threshold float64) string {
	return strconv.FormatFloat(threshold, 'f', -1, 64)
}
