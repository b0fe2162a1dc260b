package advisory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// anthropicGenerator implements Generator against the Anthropic API.
type anthropicGenerator struct {
	httpClient  *http.Client
	limiter     *rateLimiter
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

func newAnthropicGenerator(cfg Config) (Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 256
	}

	return &anthropicGenerator{
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		limiter:     newRateLimiter(cfg.RequestsPerMinute),
		httpClient:  newAPIClient(),
	}, nil
}

// Generate sends a recommendation request to Anthropic.
func (g *anthropicGenerator) Generate(ctx context.Context, prompt string, contextData any) (string, error) {
	if err := g.limiter.wait(ctx); err != nil {
		return "", err
	}

	fullPrompt, err := buildPrompt(prompt, contextData)
	if err != nil {
		return "", err
	}

	systemPrompt := "You are a personal finance advisor. Respond with short, specific, actionable recommendations only."

	requestBody := map[string]any{
		"model":       g.model,
		"max_tokens":  g.maxTokens,
		"temperature": g.temperature,
		"system":      systemPrompt,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": fullPrompt,
			},
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := map[string]string{
		"x-api-key":         g.apiKey,
		"anthropic-version": "2023-06-01",
	}

	body, err := postJSON(ctx, g.httpClient, "anthropic", "https://api.anthropic.com/v1/messages", headers, jsonBody)
	if err != nil {
		return "", err
	}

	var response anthropicResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Content) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	text := strings.TrimSpace(response.Content[0].Text)
	if text == "" {
		return "", fmt.Errorf("empty content in response")
	}

	return text, nil
}

// anthropicResponse represents the Anthropic API response structure.
type anthropicResponse struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Role       string `json:"role"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Content    []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}
