package ollama

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/zombar/newscred/internal/models"
)

const (
	DefaultModel   = "gpt-oss:20b"
	DefaultTimeout = 360 * time.Second
)

// Client wraps the Ollama API client
type Client struct {
	client  *api.Client
	model   string
	timeout time.Duration
}

// New creates a new Ollama client
func New(ollamaURL, model string) (*Client, error) {
	if ollamaURL == "" {
		ollamaURL = "http://localhost:11434"
	}
	if model == "" {
		model = DefaultModel
	}

	baseURL, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	return &Client{
		client:  api.NewClient(baseURL, http.DefaultClient),
		model:   model,
		timeout: DefaultTimeout,
	}, nil
}

// GenerateResponse generates a response from the LLM
func (c *Client) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	slog.Debug("sending Ollama request", "model", c.model, "timeout", c.timeout)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &api.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: new(bool), // false
	}

	var response strings.Builder
	err := c.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		response.WriteString(resp.Response)
		return nil
	})

	if err != nil {
		slog.Warn("Ollama generation failed", "model", c.model, "error", err)
		return "", fmt.Errorf("generation failed: %w", err)
	}

	result := strings.TrimSpace(response.String())
	slog.Debug("Ollama response received", "chars", len(result))
	return result, nil
}

// GenerateReviewerNotes writes short editorial notes for a saved report,
// pointing a human reviewer at what to verify first.
func (c *Client) GenerateReviewerNotes(ctx context.Context, report *models.AnalysisResult) (string, error) {
	warnings := "none"
	if len(report.WarningSigns) > 0 {
		warnings = strings.Join(report.WarningSigns, "; ")
	}

	prompt := fmt.Sprintf(`You are assisting a fact-checking desk. An automated system assessed the credibility of an article. Write reviewer notes for the human editor who will double-check it.

Automated assessment:
- Verdict: %s (%.0f%% confidence)
- Credibility score: %d out of 100
- Rationale: %s
- Warning signs: %s

Requirements:
- Write EXACTLY 2 or 3 short sentences
- Keep each sentence under 20 words
- Name the single most important thing to verify first
- Use simple, clear language
- Do NOT use numbering or bullet points
- Do NOT provide meta-commentary (e.g., "the system says...", "this assessment shows...")

Article text:
%s

Reviewer notes:`,
		report.Label,
		report.Confidence*100,
		report.CredibilityScore,
		report.Rationale,
		warnings,
		report.SourceText,
	)

	return c.GenerateResponse(ctx, prompt)
}
