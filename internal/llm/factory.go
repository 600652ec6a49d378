package llm

import (
	"context"
	"fmt"
	"strings"

	"journal-classifier/internal/common/config"
)

// NewClient builds the client for cfg.Provider. Ollama is reached through its
// OpenAI-compatible API.
func NewClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Temperature, cfg.MaxTokens), nil

	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		return NewOpenAIClient(apiKey, cfg.Model, baseURL, cfg.Temperature, cfg.MaxTokens), nil

	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Temperature, cfg.MaxTokens), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens)

	case "genai":
		return NewGenAIClient(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	case "mock":
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
