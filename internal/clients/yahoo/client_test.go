package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFetchFundamentals(t *testing.T) {
	// Trimmed quoteSummary payload: scalars plus two fiscal years of
	// statements, newest first as Yahoo delivers them.
	mockResp := `{
		"quoteSummary": {
			"result": [{
				"price": {
					"shortName": "Test Corp",
					"longName": "Test Corporation Ltd",
					"currency": "USD",
					"regularMarketPrice": {"raw": 101.5}
				},
				"summaryDetail": {
					"trailingPE": {"raw": 18.2},
					"marketCap": {"raw": 12000000000}
				},
				"defaultKeyStatistics": {
					"pegRatio": {},
					"enterpriseValue": {"raw": 13000000000},
					"heldPercentInstitutions": {"raw": 0.62}
				},
				"financialData": {
					"currentPrice": {"raw": 101.25},
					"returnOnEquity": {"raw": 0.21},
					"debtToEquity": {"raw": 150},
					"quickRatio": {"raw": 1.8},
					"currentRatio": {"raw": 2.1},
					"grossMargins": {"raw": 0.42},
					"freeCashflow": {"raw": 600000000},
					"ebitda": {"raw": 1000000000},
					"targetMeanPrice": {"raw": 120}
				},
				"incomeStatementHistory": {
					"incomeStatementHistory": [
						{"endDate": {"raw": 1688083200}, "totalRevenue": {"raw": 110}, "netIncome": {"raw": 20}, "costOfRevenue": {"raw": 60}},
						{"endDate": {"raw": 1656547200}, "totalRevenue": {"raw": 100}, "netIncome": {"raw": 10}, "costOfRevenue": {"raw": 55}}
					]
				},
				"balanceSheetHistory": {
					"balanceSheetStatements": [
						{"endDate": {"raw": 1688083200}, "totalStockholderEquity": {"raw": 120}, "netReceivables": {"raw": 33}, "inventory": {"raw": 20}},
						{"endDate": {"raw": 1656547200}, "totalStockholderEquity": {"raw": 100}}
					]
				},
				"cashflowStatementHistory": {
					"cashflowStatements": [
						{"endDate": {"raw": 1688083200}, "totalCashFromOperatingActivities": {"raw": 30}, "capitalExpenditures": {"raw": -5}},
						{"endDate": {"raw": 1656547200}, "totalCashFromOperatingActivities": {"raw": 25}, "capitalExpenditures": {"raw": -4}}
					]
				}
			}],
			"error": null
		}
	}`

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(mockResp))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	data, err := client.fetchFundamentals(context.Background(), "TEST")
	if err != nil {
		t.Fatalf("fetchFundamentals failed: %v", err)
	}

	if !strings.HasPrefix(gotUA, "Mozilla/5.0") {
		t.Errorf("User-Agent = %q, want browser agent", gotUA)
	}

	if data.name != "Test Corporation Ltd" {
		t.Errorf("name = %q, want Test Corporation Ltd", data.name)
	}
	if data.currency != "USD" {
		t.Errorf("currency = %q, want USD", data.currency)
	}
	// financialData currentPrice wins over the price module figure.
	if data.currentPrice != 101.25 {
		t.Errorf("currentPrice = %.2f, want 101.25", data.currentPrice)
	}

	if !data.quote.TrailingPE.Valid || data.quote.TrailingPE.Float64 != 18.2 {
		t.Errorf("TrailingPE = %+v, want 18.2", data.quote.TrailingPE)
	}
	if data.quote.PEGRatio.Valid {
		t.Errorf("PEGRatio = %+v, want unknown for empty envelope", data.quote.PEGRatio)
	}
	if !data.quote.DebtToEquity.Valid || data.quote.DebtToEquity.Float64 != 150 {
		t.Errorf("DebtToEquity = %+v, want 150", data.quote.DebtToEquity)
	}
	if !data.quote.InstitutionalHoldingShare.Valid || data.quote.InstitutionalHoldingShare.Float64 != 0.62 {
		t.Errorf("InstitutionalHoldingShare = %+v, want 0.62", data.quote.InstitutionalHoldingShare)
	}

	if len(data.statements) != 2 {
		t.Fatalf("statements = %d, want 2", len(data.statements))
	}
	// Oldest first after the reorder.
	if data.statements[0].EndDate.Year() != 2022 || data.statements[1].EndDate.Year() != 2023 {
		t.Errorf("statement order = [%d, %d], want [2022, 2023]",
			data.statements[0].EndDate.Year(), data.statements[1].EndDate.Year())
	}
	if !data.statements[0].TotalRevenue.Valid || data.statements[0].TotalRevenue.Float64 != 100 {
		t.Errorf("2022 revenue = %+v, want 100", data.statements[0].TotalRevenue)
	}
	// Cashflow fields merged into the matching fiscal year.
	if !data.statements[1].OperatingCashFlow.Valid || data.statements[1].OperatingCashFlow.Float64 != 30 {
		t.Errorf("2023 operating cash flow = %+v, want 30", data.statements[1].OperatingCashFlow)
	}
	if !data.statements[1].CapitalExpenditure.Valid || data.statements[1].CapitalExpenditure.Float64 != -5 {
		t.Errorf("2023 capex = %+v, want -5", data.statements[1].CapitalExpenditure)
	}

	if len(data.balanceSheet) != 2 {
		t.Fatalf("balance periods = %d, want 2", len(data.balanceSheet))
	}
	if data.balanceSheet[0].EndDate.Year() != 2022 {
		t.Errorf("balance order starts %d, want 2022", data.balanceSheet[0].EndDate.Year())
	}
	if data.balanceSheet[0].Receivables.Valid {
		t.Errorf("2022 receivables = %+v, want unknown for absent field", data.balanceSheet[0].Receivables)
	}
	if !data.balanceSheet[1].Inventory.Valid || data.balanceSheet[1].Inventory.Float64 != 20 {
		t.Errorf("2023 inventory = %+v, want 20", data.balanceSheet[1].Inventory)
	}
}

func TestFetchFundamentalsAPIError(t *testing.T) {
	mockResp := `{
		"quoteSummary": {
			"result": null,
			"error": {"code": "Not Found", "description": "Quote not found for ticker symbol: NOPE"}
		}
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(mockResp))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.fetchFundamentals(context.Background(), "NOPE")
	if err == nil {
		t.Fatal("expected error for quoteSummary error body, got nil")
	}

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("error type = %T, want *ProviderError", err)
	}
	if provErr.Ticker != "NOPE" {
		t.Errorf("error ticker = %q, want NOPE", provErr.Ticker)
	}
}

func TestFetchFundamentalsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.fetchFundamentals(context.Background(), "TEST")

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("error type = %T, want *ProviderError", err)
	}
	if provErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", provErr.StatusCode)
	}
}

func TestFetchHeadlines(t *testing.T) {
	mockResp := `{
		"quotes": [],
		"news": [
			{"title": "Newest story", "publisher": "Wire A", "link": "https://example.com/3", "providerPublishTime": 1700003000},
			{"title": "", "publisher": "Wire B", "link": "https://example.com/blank", "providerPublishTime": 1700002000},
			{"title": "Oldest story", "publisher": "Wire C", "link": "https://example.com/1", "providerPublishTime": 1700001000}
		]
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "TEST" {
			t.Errorf("query q = %q, want TEST", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(mockResp))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	headlines, err := client.FetchHeadlines(context.Background(), "TEST")
	if err != nil {
		t.Fatalf("FetchHeadlines failed: %v", err)
	}

	// Blank title dropped, order flipped to oldest first.
	if len(headlines) != 2 {
		t.Fatalf("headlines = %d, want 2", len(headlines))
	}
	if headlines[0].Title != "Oldest story" || headlines[1].Title != "Newest story" {
		t.Errorf("order = [%q, %q], want oldest first", headlines[0].Title, headlines[1].Title)
	}
	want := time.Unix(1700001000, 0).UTC()
	if !headlines[0].PublishedAt.Equal(want) {
		t.Errorf("PublishedAt = %v, want %v", headlines[0].PublishedAt, want)
	}
}

func TestFetchHeadlinesCapsAtSeven(t *testing.T) {
	type newsItem struct {
		Title               string `json:"title"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	}
	items := make([]newsItem, 10)
	for i := range items {
		items[i] = newsItem{Title: "story", ProviderPublishTime: int64(1700000000 + i)}
	}
	payload, _ := json.Marshal(map[string]interface{}{"quotes": []string{}, "news": items})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	headlines, err := client.FetchHeadlines(context.Background(), "TEST")
	if err != nil {
		t.Fatalf("FetchHeadlines failed: %v", err)
	}
	if len(headlines) != 7 {
		t.Errorf("headlines = %d, want 7", len(headlines))
	}
}

func TestResolve(t *testing.T) {
	mockResp := `{
		"quotes": [
			{"symbol": "AAPL", "shortname": "Apple Inc.", "longname": "Apple Inc.", "exchDisp": "NASDAQ", "quoteType": "EQUITY"},
			{"symbol": "APC.F", "shortname": "APPLE INC.", "longname": "", "exchDisp": "Frankfurt", "quoteType": "EQUITY"},
			{"symbol": "", "shortname": "junk row"}
		],
		"news": []
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(mockResp))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	matches, err := client.Resolve(context.Background(), "apple")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	if matches[0].Symbol != "AAPL" || matches[0].Exchange != "NASDAQ" {
		t.Errorf("first match = %+v, want AAPL on NASDAQ", matches[0])
	}
	// Long name absent falls back to short name.
	if matches[1].Name != "APPLE INC." {
		t.Errorf("fallback name = %q, want APPLE INC.", matches[1].Name)
	}
}

func TestBarClose(t *testing.T) {
	tests := []struct {
		name   string
		adj    float64
		raw    float64
		want   float64
		wantOK bool
	}{
		{"adjusted close wins", 99.5, 100.0, 99.5, true},
		{"zero adjusted falls back to raw", 0, 100.0, 100.0, true},
		{"negative adjusted falls back to raw", -1, 100.0, 100.0, true},
		{"no positive close drops the bar", 0, 0, 0, false},
	}

	for _, tt := range tests {
		got, ok := barClose(decimal.NewFromFloat(tt.adj), decimal.NewFromFloat(tt.raw))
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("%s: barClose = (%v, %v), want (%v, %v)", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFlexFloat64(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{`42.5`, 42.5},
		{`"42.5"`, 42.5},
		{`""`, 0},
		{`"N/A"`, 0},
		{`"garbage"`, 0},
	}

	for _, tt := range tests {
		var f flexFloat64
		if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
			t.Errorf("unmarshal %s: %v", tt.input, err)
			continue
		}
		if float64(f) != tt.want {
			t.Errorf("flexFloat64(%s) = %v, want %v", tt.input, float64(f), tt.want)
		}
	}
}
