package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/llm"
)

// providerKeyEnv lists the conventional environment variables holding each
// provider's API key, in lookup order.
var providerKeyEnv = map[string][]string{
	"openai":    {"OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
	"gemini":    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"google":    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// SetDefaults registers default values for every key gastos reads.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.max_tokens", llm.DefaultMaxTokens)
	v.SetDefault("llm.max_retries", llm.DefaultMaxRetries)
	v.SetDefault("llm.retry_delay", llm.DefaultRetryDelay)
	v.SetDefault("llm.cache_ttl", "1h")
	v.SetDefault("llm.rate_limit", 0)
	v.SetDefault("llm.max_input_chars", llm.DefaultMaxInputChars)
}

// DatabasePath returns the expanded database location.
func DatabasePath(v *viper.Viper) string {
	path := v.GetString("database.path")
	if path == "" {
		path = DefaultDatabasePath
	}
	return ExpandPath(path)
}

// LoadLLMConfig builds the provider configuration. Precedence for the API
// key is the llm.api_key setting (config file or GASTOS_LLM_API_KEY), then
// the provider's conventional environment variable.
func LoadLLMConfig(v *viper.Viper) (llm.Config, error) {
	cfg := llm.Config{
		Provider:      strings.ToLower(strings.TrimSpace(v.GetString("llm.provider"))),
		APIKey:        v.GetString("llm.api_key"),
		Model:         v.GetString("llm.model"),
		BaseURL:       v.GetString("llm.base_url"),
		Temperature:   v.GetFloat64("llm.temperature"),
		MaxTokens:     v.GetInt("llm.max_tokens"),
		MaxRetries:    v.GetInt("llm.max_retries"),
		RetryDelay:    v.GetDuration("llm.retry_delay"),
		CacheTTL:      v.GetDuration("llm.cache_ttl"),
		RateLimit:     v.GetInt("llm.rate_limit"),
		MaxInputChars: v.GetInt("llm.max_input_chars"),
	}

	if cfg.Provider == "" {
		return cfg, fmt.Errorf("%w: llm.provider (one of %s)",
			common.ErrMissingConfig, strings.Join(llm.Providers(), ", "))
	}

	envVars, ok := providerKeyEnv[cfg.Provider]
	if !ok {
		return cfg, fmt.Errorf("%w: unknown llm provider %q", common.ErrInvalidConfig, cfg.Provider)
	}

	if cfg.APIKey == "" {
		for _, name := range envVars {
			if key := os.Getenv(name); key != "" {
				cfg.APIKey = key
				break
			}
		}
	}
	if cfg.APIKey == "" {
		return cfg, fmt.Errorf("%w: API key for %s (set llm.api_key or %s)",
			common.ErrMissingConfig, cfg.Provider, envVars[0])
	}

	if cfg.MaxInputChars < 0 {
		return cfg, fmt.Errorf("%w: llm.max_input_chars must not be negative", common.ErrInvalidConfig)
	}
	return cfg, nil
}
