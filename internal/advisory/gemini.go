package advisory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// geminiGenerator implements Generator against the Gemini REST API.
type geminiGenerator struct {
	httpClient  *http.Client
	limiter     *rateLimiter
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

func newGeminiGenerator(cfg Config) (Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 256
	}

	return &geminiGenerator{
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		limiter:     newRateLimiter(cfg.RequestsPerMinute),
		httpClient:  newAPIClient(),
	}, nil
}

// Generate sends a content generation request to Gemini.
func (g *geminiGenerator) Generate(ctx context.Context, prompt string, contextData any) (string, error) {
	if err := g.limiter.wait(ctx); err != nil {
		return "", err
	}

	fullPrompt, err := buildPrompt(prompt, contextData)
	if err != nil {
		return "", err
	}

	requestBody := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]string{
					{"text": fullPrompt},
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature":     g.temperature,
			"maxOutputTokens": g.maxTokens,
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent", g.model)
	headers := map[string]string{"x-goog-api-key": g.apiKey}

	body, err := postJSON(ctx, g.httpClient, "gemini", url, headers, jsonBody)
	if err != nil {
		return "", err
	}

	var response geminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	text := strings.TrimSpace(response.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("empty content in response")
	}

	return text, nil
}

// geminiResponse represents the Gemini API response structure.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}
