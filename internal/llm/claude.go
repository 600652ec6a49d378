package llm

import (
	"context"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

type ClaudeClient struct {
	client      *anthropic.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewClaudeClient(apiKey, model, baseURL string, temperature float64, maxTokens int) *ClaudeClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	return &ClaudeClient{
		client:      anthropic.NewClient(apiKey, opts...),
		model:       model,
		temperature: float32(temperature),
		maxTokens:   maxTokens,
	}
}

func (c *ClaudeClient) Generate(ctx context.Context, prompt string) (string, error) {
	temperature := c.temperature
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(c.model),
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(prompt),
				},
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, content := range resp.Content {
		if content.Text != nil {
			b.WriteString(*content.Text)
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}
