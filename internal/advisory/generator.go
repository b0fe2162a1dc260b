// Package advisory turns structured insight data into human-readable
// recommendation text via a hosted language model. The generator is an
// optional, injectable capability: every caller must be prepared for it
// to fail and fall back to static recommendations.
package advisory

import (
	"context"
	"encoding/json"
	"fmt"
)

// Generator produces free-text advice from a prompt and a structured
// context payload.
type Generator interface {
	Generate(ctx context.Context, prompt string, contextData any) (string, error)
}

// Config configures a generator provider.
type Config struct {
	Provider          string // "gemini", "anthropic", "openai" or "none"
	APIKey            string
	Model             string
	Temperature       float64
	MaxTokens         int
	RequestsPerMinute int
}

// Disabled is a Generator that always reports itself unavailable.
// Callers degrade to their static fallbacks.
type Disabled struct{}

// Generate implements Generator.
func (Disabled) Generate(_ context.Context, _ string, _ any) (string, error) {
	return "", fmt.Errorf("advisory generation disabled")
}

// buildPrompt flattens the prompt and context payload into one request
// body. Large context slices are truncated to keep requests small.
func buildPrompt(prompt string, contextData any) (string, error) {
	if items, ok := contextData.([]any); ok && len(items) > 10 {
		contextData = items[:10]
	}

	encoded, err := json.Marshal(contextData)
	if err != nil {
		return "", fmt.Errorf("failed to encode context data: %w", err)
	}

	return fmt.Sprintf("%s\n\nData: %s", prompt, encoded), nil
}
