package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/gastos/internal/common"
)

// Providers returns the supported provider names.
func Providers() []string {
	return []string{"openai", "anthropic", "gemini"}
}

// NewClient creates a provider client from cfg.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	var (
		client Client
		err    error
	)

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai":
		var c *openAIClient
		if c, err = newOpenAIClient(cfg); err == nil {
			client = c
		}
	case "anthropic":
		var c *anthropicClient
		if c, err = newAnthropicClient(cfg); err == nil {
			client = c
		}
	case "gemini", "google":
		var c *geminiClient
		if c, err = newGeminiClient(ctx, cfg); err == nil {
			client = c
		}
	case "":
		err = fmt.Errorf("%w: llm provider is not set", common.ErrMissingConfig)
	default:
		err = fmt.Errorf("%w: unsupported LLM provider: %s", common.ErrInvalidConfig, cfg.Provider)
	}

	if err != nil {
		return nil, err
	}
	return client, nil
}
