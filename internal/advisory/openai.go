package advisory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// openAIGenerator implements Generator against the OpenAI API.
type openAIGenerator struct {
	httpClient  *http.Client
	limiter     *rateLimiter
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

func newOpenAIGenerator(cfg Config) (Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 256
	}

	return &openAIGenerator{
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		limiter:     newRateLimiter(cfg.RequestsPerMinute),
		httpClient:  newAPIClient(),
	}, nil
}

// Generate sends a recommendation request to OpenAI.
func (g *openAIGenerator) Generate(ctx context.Context, prompt string, contextData any) (string, error) {
	if err := g.limiter.wait(ctx); err != nil {
		return "", err
	}

	fullPrompt, err := buildPrompt(prompt, contextData)
	if err != nil {
		return "", err
	}

	requestBody := map[string]any{
		"model":       g.model,
		"max_tokens":  g.maxTokens,
		"temperature": g.temperature,
		"messages": []map[string]string{
			{
				"role":    "system",
				"content": "You are a personal finance advisor. Respond with short, specific, actionable recommendations only.",
			},
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

	headers := map[string]string{"Authorization": "Bearer " + g.apiKey}

	body, err := postJSON(ctx, g.httpClient, "openai", "https://api.openai.com/v1/chat/completions", headers, jsonBody)
	if err != nil {
		return "", err
	}

	var response openAIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	text := strings.TrimSpace(response.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty content in response")
	}

	return text, nil
}

// openAIResponse represents the OpenAI API response structure.
type openAIResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
