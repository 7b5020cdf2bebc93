package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/llm"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("GASTOS_TEST_DIR", "/tmp/gastos")

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "empty", path: "", want: ""},
		{name: "absolute", path: "/var/lib/gastos.db", want: "/var/lib/gastos.db"},
		{name: "tilde", path: "~", want: home},
		{name: "tilde prefix", path: "~/gastos/gastos.db", want: filepath.Join(home, "gastos/gastos.db")},
		{name: "env var", path: "$GASTOS_TEST_DIR/gastos.db", want: "/tmp/gastos/gastos.db"},
		{name: "tilde inside", path: "/data/~/x", want: "/data/~/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.path))
		})
	}
}

func TestDatabasePath(t *testing.T) {
	t.Setenv("HOME", "/home/ana")

	v := viper.New()
	assert.Equal(t, "/home/ana/.local/share/gastos/gastos.db", DatabasePath(v))

	v.Set("database.path", "$HOME/gastos.db")
	assert.Equal(t, "/home/ana/gastos.db", DatabasePath(v))
}

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		t.Setenv(name, "")
	}
}

func TestLoadLLMConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearKeyEnv(t)
		cfg, err := LoadLLMConfig(newViper(map[string]any{
			"llm.provider": "OpenAI",
			"llm.api_key":  "sk-test",
		}))
		require.NoError(t, err)

		assert.Equal(t, "openai", cfg.Provider)
		assert.Equal(t, "sk-test", cfg.APIKey)
		assert.Equal(t, llm.DefaultMaxTokens, cfg.MaxTokens)
		assert.Equal(t, llm.DefaultMaxRetries, cfg.MaxRetries)
		assert.Equal(t, llm.DefaultRetryDelay, cfg.RetryDelay)
		assert.Equal(t, time.Hour, cfg.CacheTTL)
		assert.Equal(t, llm.DefaultMaxInputChars, cfg.MaxInputChars)
	})

	t.Run("provider env fallback", func(t *testing.T) {
		clearKeyEnv(t)
		t.Setenv("ANTHROPIC_API_KEY", "ant-key")

		cfg, err := LoadLLMConfig(newViper(map[string]any{"llm.provider": "anthropic"}))
		require.NoError(t, err)
		assert.Equal(t, "ant-key", cfg.APIKey)
	})

	t.Run("google key for gemini", func(t *testing.T) {
		clearKeyEnv(t)
		t.Setenv("GOOGLE_API_KEY", "goog-key")

		cfg, err := LoadLLMConfig(newViper(map[string]any{"llm.provider": "gemini"}))
		require.NoError(t, err)
		assert.Equal(t, "goog-key", cfg.APIKey)
	})

	t.Run("config key wins over env", func(t *testing.T) {
		clearKeyEnv(t)
		t.Setenv("OPENAI_API_KEY", "env-key")

		cfg, err := LoadLLMConfig(newViper(map[string]any{
			"llm.provider": "openai",
			"llm.api_key":  "file-key",
		}))
		require.NoError(t, err)
		assert.Equal(t, "file-key", cfg.APIKey)
	})

	t.Run("overrides", func(t *testing.T) {
		clearKeyEnv(t)
		cfg, err := LoadLLMConfig(newViper(map[string]any{
			"llm.provider":        "gemini",
			"llm.api_key":         "k",
			"llm.model":           "gemini-2.5-pro",
			"llm.retry_delay":     "250ms",
			"llm.max_input_chars": 2000,
			"llm.rate_limit":      30,
		}))
		require.NoError(t, err)
		assert.Equal(t, "gemini-2.5-pro", cfg.Model)
		assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
		assert.Equal(t, 2000, cfg.MaxInputChars)
		assert.Equal(t, 30, cfg.RateLimit)
	})
}

func TestLoadLLMConfigErrors(t *testing.T) {
	clearKeyEnv(t)

	tests := []struct {
		name    string
		values  map[string]any
		wantErr error
	}{
		{name: "no provider", values: nil, wantErr: common.ErrMissingConfig},
		{name: "unknown provider", values: map[string]any{"llm.provider": "mistral", "llm.api_key": "k"}, wantErr: common.ErrInvalidConfig},
		{name: "no key", values: map[string]any{"llm.provider": "openai"}, wantErr: common.ErrMissingConfig},
		{name: "negative input limit", values: map[string]any{"llm.provider": "openai", "llm.api_key": "k", "llm.max_input_chars": -1}, wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLLMConfig(newViper(tt.values))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
