package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/fathom/internal/clients/yahoo"
	"github.com/bobmcallan/fathom/internal/forecast"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

// --- Analysis handlers ---

// routeAnalyze dispatches /api/analyze/{ticker} and /api/analyze/{ticker}/chart.
func (s *Server) routeAnalyze(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/analyze/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required in path")
		return
	}

	parts := strings.SplitN(path, "/", 2)
	ticker := parts[0]
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	switch subpath {
	case "":
		s.handleAnalyze(w, r, ticker)
	case "chart":
		s.handleAnalyzeChart(w, r, ticker)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// parseAnalyzeRequest reads the shared analyze query parameters. On a bad
// parameter it writes a 400 and returns false.
func parseAnalyzeRequest(w http.ResponseWriter, r *http.Request, ticker string) (interfaces.AnalyzeRequest, bool) {
	req := interfaces.AnalyzeRequest{Ticker: ticker}

	if v := r.URL.Query().Get("rules"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "rules must be an integer")
			return req, false
		}
		switch n {
		case 5, 8, 15:
			req.Preset = n
		default:
			WriteError(w, http.StatusBadRequest, "rules must be 5, 8, or 15")
			return req, false
		}
	}

	if v := r.URL.Query().Get("policy"); v != "" {
		policy := models.PolicyName(strings.ToLower(v))
		switch policy {
		case models.PolicyAggregate, models.PolicyGate:
			req.Policy = policy
		default:
			WriteError(w, http.StatusBadRequest, "policy must be aggregate or gate")
			return req, false
		}
	}

	if v := r.URL.Query().Get("refresh"); v != "" {
		refresh, err := strconv.ParseBool(v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "refresh must be a boolean")
			return req, false
		}
		req.Refresh = refresh
	}

	return req, true
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	req, ok := parseAnalyzeRequest(w, r, ticker)
	if !ok {
		return
	}

	report, err := s.app.Analysis.Analyze(r.Context(), req)
	if err != nil {
		s.writeAnalysisError(w, ticker, err)
		return
	}

	WriteJSON(w, http.StatusOK, report)
}

func (s *Server) handleAnalyzeChart(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	req, ok := parseAnalyzeRequest(w, r, ticker)
	if !ok {
		return
	}

	png, err := s.app.Analysis.ForecastChart(r.Context(), req)
	if err != nil {
		if errors.Is(err, forecast.ErrInsufficientData) {
			WriteErrorWithCode(w, http.StatusUnprocessableEntity,
				fmt.Sprintf("Chart error: %v", err), "insufficient_history")
			return
		}
		s.writeAnalysisError(w, ticker, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// writeAnalysisError maps pipeline failures onto HTTP statuses: a provider
// miss becomes 404, other provider failures 502, everything else 500.
func (s *Server) writeAnalysisError(w http.ResponseWriter, ticker string, err error) {
	var pe *yahoo.ProviderError
	if errors.As(err, &pe) {
		if pe.StatusCode == http.StatusNotFound {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Ticker %s not found", strings.ToUpper(ticker)))
			return
		}
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Provider error: %v", err))
		return
	}
	WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Analysis error: %v", err))
}

// --- Report handlers ---

func (s *Server) handleReportList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	tickerFilter := r.URL.Query().Get("ticker")

	reports, err := s.app.Analysis.ListReports(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing reports: %v", err))
		return
	}

	type reportInfo struct {
		Ticker      string             `json:"ticker"`
		Preset      int                `json:"preset"`
		Policy      models.PolicyName  `json:"policy"`
		Score       int                `json:"score"`
		Maximum     int                `json:"maximum"`
		Verdict     models.VerdictTier `json:"verdict"`
		GeneratedAt time.Time          `json:"generated_at"`
	}

	result := make([]reportInfo, 0, len(reports))
	for _, report := range reports {
		if tickerFilter != "" && !strings.EqualFold(report.Ticker, tickerFilter) {
			continue
		}
		result = append(result, reportInfo{
			Ticker:      report.Ticker,
			Preset:      report.Preset,
			Policy:      report.Policy,
			Score:       report.Scorecard.Score,
			Maximum:     report.Scorecard.Maximum,
			Verdict:     report.Scorecard.Verdict,
			GeneratedAt: report.GeneratedAt,
		})
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reports": result,
		"count":   len(result),
	})
}

// routeReports dispatches /api/reports/{ticker}.
func (s *Server) routeReports(w http.ResponseWriter, r *http.Request) {
	ticker := strings.TrimPrefix(r.URL.Path, "/api/reports/")
	if ticker == "" {
		s.handleReportList(w, r)
		return
	}
	if strings.Contains(ticker, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	s.handleReportDelete(w, r, ticker)
}

func (s *Server) handleReportDelete(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	count, err := s.app.Analysis.DeleteReports(r.Context(), ticker)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error deleting reports: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":  strings.ToUpper(strings.TrimSpace(ticker)),
		"deleted": count,
	})
}

// --- Search handler ---

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		WriteError(w, http.StatusBadRequest, "q is required")
		return
	}

	matches, err := s.app.Analysis.Search(r.Context(), query)
	if err != nil {
		var pe *yahoo.ProviderError
		if errors.As(err, &pe) {
			WriteError(w, http.StatusBadGateway, fmt.Sprintf("Provider error: %v", err))
			return
		}
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Search error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"matches": matches,
		"count":   len(matches),
	})
}
