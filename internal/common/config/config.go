// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Batch    BatchConfig    `mapstructure:"batch"`
	Contract ContractConfig `mapstructure:"contract"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// LLMConfig selects and configures the remote model endpoint.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"` // openai | claude | gemini | genai | mock
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds, per call
}

// BatchConfig holds the fan-out, retry and I/O settings of one run.
type BatchConfig struct {
	Concurrency      int    `mapstructure:"concurrency"`
	MaxAttempts      int    `mapstructure:"max_attempts"`
	RetryDelay       int    `mapstructure:"retry_delay"` // milliseconds
	RetryParseErrors bool   `mapstructure:"retry_parse_errors"`
	InputPath        string `mapstructure:"input_path"`
	OutputPath       string `mapstructure:"output_path"`
	TitleField       string `mapstructure:"title_field"`
}

// ContractConfig chooses the response contract and prompt.
type ContractConfig struct {
	RegistryPath   string `mapstructure:"registry_path"`
	ID             string `mapstructure:"id"`
	PromptTemplate string `mapstructure:"prompt_template"`
	Topic          string `mapstructure:"topic"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
	File   string `mapstructure:"file"`
}

// Outputs lists the zap sinks for this configuration.
func (l LoggingConfig) Outputs() []string {
	outs := []string{l.Output}
	if l.File != "" {
		outs = append(outs, l.File)
	}
	return outs
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

type TracingConfig struct {
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	ServiceName    string `mapstructure:"service_name"`
}

// CallTimeout is the per-call deadline.
func (c LLMConfig) CallTimeout() time.Duration {
	return GetDuration(c.Timeout)
}

// Delay is the fixed wait between attempts.
func (b BatchConfig) Delay() time.Duration {
	return GetDuration(b.RetryDelay)
}
