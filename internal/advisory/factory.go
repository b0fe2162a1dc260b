package advisory

import (
	"fmt"
	"strings"
)

// NewGenerator creates an advisory generator for the configured provider.
func NewGenerator(cfg Config) (Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		return newGeminiGenerator(cfg)
	case "anthropic":
		return newAnthropicGenerator(cfg)
	case "openai":
		return newOpenAIGenerator(cfg)
	case "", "none":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unsupported advisory provider: %s", cfg.Provider)
	}
}
