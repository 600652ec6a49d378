package llm

import (
	"context"
	"strings"

	commonhttp "journal-classifier/internal/common/http"
)

// GenAIClient talks to an internal generation gateway:
// POST {baseURL}/api/ai/generate -> {"text": "..."}.
type GenAIClient struct {
	http        *commonhttp.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

type genAIRequest struct {
	Prompt      string  `json:"prompt"`
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type genAIResponse struct {
	Text string `json:"text"`
}

func NewGenAIClient(baseURL, apiKey, model string, temperature float64, maxTokens int) *GenAIClient {
	return &GenAIClient{
		// deadlines come from the caller's context
		http:        commonhttp.NewClient(0),
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (c *GenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	var out genAIResponse
	err := c.http.PostJSON(ctx, c.baseURL+"/api/ai/generate", headers, genAIRequest{
		Prompt:      prompt,
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}, &out)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", ErrEmptyResponse
	}
	return out.Text, nil
}
