package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/gastos/internal/common"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{name: "openai", config: Config{Provider: "openai", APIKey: "k"}},
		{name: "anthropic upper case", config: Config{Provider: "Anthropic", APIKey: "k"}},
		{name: "gemini", config: Config{Provider: "gemini", APIKey: "k"}},
		{name: "missing key", config: Config{Provider: "openai"}, wantErr: common.ErrMissingConfig},
		{name: "missing provider", config: Config{APIKey: "k"}, wantErr: common.ErrMissingConfig},
		{name: "unknown provider", config: Config{Provider: "cohere", APIKey: "k"}, wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), tt.config)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestProviders(t *testing.T) {
	assert.Equal(t, []string{"openai", "anthropic", "gemini"}, Providers())
}
