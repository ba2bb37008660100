// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

const DefaultModel = "gemini-2.0-flash"

// Client implements the CommentaryClient interface
type Client struct {
	client *genai.Client
	model  string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GenerateContent generates text from a prompt
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Msg("Generating content")

	contents := genai.Text(prompt)
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(result)
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// ReportCommentary writes a short narrative summary of a finished report.
func (c *Client) ReportCommentary(ctx context.Context, report *models.AnalysisReport) (string, error) {
	prompt := buildReportCommentaryPrompt(report)
	return c.GenerateContent(ctx, prompt)
}

// buildReportCommentaryPrompt lays out the scorecard, sentiment, and
// forecast for the model to narrate.
func buildReportCommentaryPrompt(report *models.AnalysisReport) string {
	var sb strings.Builder

	name := report.Name
	if name == "" {
		name = report.Ticker
	}
	fmt.Fprintf(&sb, `Summarize the following fundamental assessment of %s (%s) in two short paragraphs:
1. What the checklist result says about financial health
2. How the news sentiment and long-range price projection qualify that picture

`, name, report.Ticker)

	fmt.Fprintf(&sb, "Checklist: %d of %d checks passed, verdict %s (%d-rule preset, %s policy)\n",
		report.Scorecard.Score, report.Scorecard.Maximum, report.Scorecard.Verdict,
		report.Preset, report.Policy)

	for _, check := range report.Scorecard.Checks {
		fmt.Fprintf(&sb, "- %s: %s (%s)\n", check.Label, check.Status, check.Explanation)
	}

	fmt.Fprintf(&sb, "\nNews sentiment: %s", report.Sentiment.Label)
	if report.Sentiment.Strength != "" {
		fmt.Fprintf(&sb, " (%s, %s)", report.Sentiment.Strength, report.Sentiment.Rationale)
	}
	sb.WriteString("\n")

	if report.Forecast != nil {
		fmt.Fprintf(&sb, "Price projection: %.1f%% modeled return over %d years (current price %.2f %s)\n",
			report.Forecast.ROI, report.Forecast.HorizonYears, report.CurrentPrice, report.Currency)
	} else if report.ForecastNote != "" {
		fmt.Fprintf(&sb, "Price projection unavailable: %s\n", report.ForecastNote)
	}

	sb.WriteString("\nKeep it factual and concise. Do not give investment advice.")

	return sb.String()
}

// Ensure Client implements CommentaryClient
var _ interfaces.CommentaryClient = (*Client)(nil)
