// Package yahoo provides a client for the public Yahoo Finance API
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second

	// Yahoo rejects requests without a browser user agent.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Client fetches quotes, statements, headlines, and price history from the
// unauthenticated Yahoo Finance endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ProviderError reports a failed provider request with enough context to
// log and branch on.
type ProviderError struct {
	Ticker     string
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("yahoo API error: %s (status: %d, endpoint: %s, ticker: %s)",
		e.Message, e.StatusCode, e.Endpoint, e.Ticker)
}

// get performs a rate-limited GET request and decodes the JSON response.
func (c *Client) get(ctx context.Context, ticker, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug().Str("url", c.baseURL+path).Str("ticker", ticker).Msg("Yahoo API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &ProviderError{
			Ticker:     ticker,
			Endpoint:   path,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// FetchSnapshot assembles the full analysis input for a ticker. Quote and
// statement data are required; headlines and price history degrade to empty
// with a warning, since the report sections they feed are isolated.
func (c *Client) FetchSnapshot(ctx context.Context, ticker string) (*models.FinancialSnapshot, error) {
	fundamentals, err := c.fetchFundamentals(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("fundamentals for %s: %w", ticker, err)
	}

	snap := &models.FinancialSnapshot{
		Ticker:       ticker,
		Name:         fundamentals.name,
		Currency:     fundamentals.currency,
		CurrentPrice: fundamentals.currentPrice,
		Statements:   fundamentals.statements,
		BalanceSheet: fundamentals.balanceSheet,
		Quote:        fundamentals.quote,
		FetchedAt:    time.Now(),
	}

	// The live quote feed carries a fresher price and display name.
	if q, err := c.fetchQuote(ticker); err != nil {
		c.logger.Warn().Str("ticker", ticker).Err(err).Msg("Quote fetch failed, using statement price")
	} else {
		if q.price > 0 {
			snap.CurrentPrice = q.price
		}
		if q.name != "" {
			snap.Name = q.name
		}
		if q.currency != "" {
			snap.Currency = q.currency
		}
	}

	if snap.CurrentPrice <= 0 {
		return nil, &ProviderError{
			Ticker:   ticker,
			Endpoint: "/v10/finance/quoteSummary",
			Message:  "no usable market price",
		}
	}

	headlines, err := c.FetchHeadlines(ctx, ticker)
	if err != nil {
		c.logger.Warn().Str("ticker", ticker).Err(err).Msg("Headline fetch failed")
	} else {
		snap.Headlines = headlines
	}

	history, err := c.FetchDailyCloses(ctx, ticker, defaultLookbackYears)
	if err != nil {
		c.logger.Warn().Str("ticker", ticker).Err(err).Msg("Price history fetch failed")
	} else {
		snap.PriceHistory = history
	}

	return snap, nil
}

// Ensure Client implements the provider contracts
var (
	_ interfaces.MarketDataProvider   = (*Client)(nil)
	_ interfaces.NewsProvider         = (*Client)(nil)
	_ interfaces.PriceHistoryProvider = (*Client)(nil)
	_ interfaces.SymbolResolver       = (*Client)(nil)
)
