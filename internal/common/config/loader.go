// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "journal-classifier/internal/common/errors"
	"journal-classifier/internal/common/validation"
)

// Providers accepted in llm.provider.
var Providers = map[string]bool{
	"openai": true,
	"claude": true,
	"gemini": true,
	"genai":  true,
	"ollama": true,
	"mock":   true,
}

// Load reads configs/config.yaml (optional), merges config.<APP_ENVIRONMENT>.yaml
// and applies environment overrides such as BATCH_CONCURRENCY.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "journal-classifier")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.5)
	v.SetDefault("llm.max_tokens", 1000)
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.timeout", 60000)

	v.SetDefault("batch.concurrency", 5)
	v.SetDefault("batch.max_attempts", 3)
	v.SetDefault("batch.retry_delay", 2000)
	v.SetDefault("batch.retry_parse_errors", true)
	v.SetDefault("batch.input_path", "data/Table II.json")
	v.SetDefault("batch.output_path", "data/tjsem_table2.json")
	v.SetDefault("batch.title_field", "title")

	v.SetDefault("contract.registry_path", "")
	v.SetDefault("contract.id", "journal-category")
	v.SetDefault("contract.prompt_template", "")
	v.SetDefault("contract.topic", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.file", "logs/journal-classifier.log")

	v.SetDefault("metrics.address", "")
	v.SetDefault("tracing.jaeger_endpoint", "")
	v.SetDefault("tracing.service_name", "")
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults fills values that cannot be expressed as static viper defaults.
func applyDefaults(cfg *Config) {
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = cfg.App.Name
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
}

// overrideEmptyConfig falls back to the provider's conventional API key variable.
func overrideEmptyConfig(cfg *Config) {
	if cfg.LLM.APIKey != "" {
		return
	}
	envKey := map[string]string{
		"openai": "OPENAI_API_KEY",
		"claude": "ANTHROPIC_API_KEY",
		"gemini": "GEMINI_API_KEY",
		"genai":  "GENAI_API_KEY",
	}[cfg.LLM.Provider]
	if envKey == "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		cfg.LLM.APIKey = val
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if !Providers[cfg.LLM.Provider] {
		return apperrors.NewConfigInvalidError(fmt.Sprintf("llm.provider %q is not supported", cfg.LLM.Provider))
	}
	if cfg.LLM.Provider != "mock" && cfg.LLM.Model == "" {
		return apperrors.NewConfigInvalidError("llm.model is required")
	}
	if cfg.LLM.Provider == "genai" && cfg.LLM.BaseURL == "" {
		return apperrors.NewConfigInvalidError("llm.base_url is required for the genai provider")
	}
	if cfg.LLM.BaseURL != "" && !validation.ValidateURL(cfg.LLM.BaseURL) {
		return apperrors.NewConfigInvalidError(fmt.Sprintf("llm.base_url %q is not a valid URL", cfg.LLM.BaseURL))
	}
	if cfg.LLM.Timeout < 0 {
		return apperrors.NewConfigInvalidError("llm.timeout must be >= 0")
	}
	if cfg.Batch.Concurrency < 1 {
		return apperrors.NewConfigInvalidError("batch.concurrency must be >= 1")
	}
	if cfg.Batch.MaxAttempts < 1 {
		return apperrors.NewConfigInvalidError("batch.max_attempts must be >= 1")
	}
	if cfg.Batch.RetryDelay < 0 {
		return apperrors.NewConfigInvalidError("batch.retry_delay must be >= 0")
	}
	if cfg.Batch.InputPath == "" {
		return apperrors.NewConfigInvalidError("batch.input_path is required")
	}
	if cfg.Batch.OutputPath == "" {
		return apperrors.NewConfigInvalidError("batch.output_path is required")
	}
	if cfg.Batch.TitleField == "" {
		return apperrors.NewConfigInvalidError("batch.title_field is required")
	}
	if cfg.Contract.ID == "" {
		return apperrors.NewConfigInvalidError("contract.id is required")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
