// internal/workers/classification/classify-journal/config.go
package classifyjournal

import (
	"time"

	"journal-classifier/internal/common/config"
)

type Config struct {
	Provider       string
	Timeout        time.Duration
	PromptTemplate string // overrides the contract's template when set
	Topic          string
}

// ConfigFrom maps the application configuration onto the handler's.
func ConfigFrom(cfg *config.Config) *Config {
	return &Config{
		Provider:       cfg.LLM.Provider,
		Timeout:        cfg.LLM.CallTimeout(),
		PromptTemplate: cfg.Contract.PromptTemplate,
		Topic:          cfg.Contract.Topic,
	}
}
