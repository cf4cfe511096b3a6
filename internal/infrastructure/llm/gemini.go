// Package llm writes narrative summaries of scored transactions with a
// hosted language model.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bibbank/risk-service/internal/domain/port"
	"github.com/bibbank/risk-service/internal/domain/valueobject"
)

// Compile-time interface checks.
var (
	_ port.Summarizer = (*GeminiSummarizer)(nil)
	_ port.Summarizer = DisabledSummarizer{}
)

var (
	// ErrCircuitOpen is returned while the summarizer circuit is open.
	ErrCircuitOpen = errors.New("summarizer circuit open")

	// ErrDisabled is returned when no summarizer is configured.
	ErrDisabled = errors.New("summarizer disabled")
)

const (
	breakerThreshold    = 5
	breakerOpenDuration = 30 * time.Second
	maxErrorBody        = 512
)

// GeminiConfig configures the Gemini summarizer.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GeminiSummarizer implements port.Summarizer with the Gemini
// generateContent API.
type GeminiSummarizer struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	breaker *breaker
	logger  *slog.Logger
}

// NewGeminiSummarizer creates a new Gemini API client. Per-call deadlines come
// from the caller's context.
func NewGeminiSummarizer(cfg GeminiConfig, logger *slog.Logger) *GeminiSummarizer {
	return &GeminiSummarizer{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		breaker: newBreaker(breakerThreshold, breakerOpenDuration),
		logger:  logger,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Summarize asks the model for a short analyst-style explanation.
func (s *GeminiSummarizer) Summarize(ctx context.Context, riskScore float64, riskLevel valueobject.RiskLevel, reasons []string) (string, error) {
	if !s.breaker.allow() {
		return "", ErrCircuitOpen
	}

	summary, err := s.generate(ctx, buildPrompt(riskScore, riskLevel, reasons))
	if err != nil {
		// A caller giving up says nothing about the upstream's health.
		if ctx.Err() != nil {
			s.breaker.recordAbandoned()
		} else {
			s.breaker.recordFailure()
		}
		return "", err
	}

	s.breaker.recordSuccess()
	return summary, nil
}

func (s *GeminiSummarizer) generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", s.baseURL, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		s.logger.Warn("gemini API error",
			slog.Int("status", resp.StatusCode),
			slog.String("model", s.model),
		)
		return "", fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("gemini API returned no candidates")
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

func buildPrompt(riskScore float64, riskLevel valueobject.RiskLevel, reasons []string) string {
	factors := "none identified"
	if len(reasons) > 0 {
		factors = strings.Join(reasons, ", ")
	}
	return fmt.Sprintf(`You are a fraud detection analyst.

Risk Score: %v
Risk Level: %s

Key Risk Factors:
%s

Explain clearly in 3-4 sentences:
1. Why this transaction is risky.
2. What behavioral pattern is observed.
3. What action the bank should consider.

Be professional and concise.
`, riskScore, riskLevel, factors)
}

// DisabledSummarizer is used when no model credentials are configured. Every
// call fails, so callers fall back to their default text.
type DisabledSummarizer struct{}

// Summarize always returns ErrDisabled.
func (DisabledSummarizer) Summarize(context.Context, float64, valueobject.RiskLevel, []string) (string, error) {
	return "", ErrDisabled
}
