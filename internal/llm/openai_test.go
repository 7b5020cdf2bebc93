package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/gastos/internal/common"
)

func TestNewOpenAIClient(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantModel string
		wantErr   bool
	}{
		{
			name:      "valid config",
			config:    Config{APIKey: "test-key"},
			wantModel: openAIDefaultModel,
		},
		{
			name:    "missing API key",
			config:  Config{},
			wantErr: true,
		},
		{
			name:      "custom model and settings",
			config:    Config{APIKey: "test-key", Model: "gpt-4o", Temperature: 0.5, MaxTokens: 200},
			wantModel: "gpt-4o",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := newOpenAIClient(tt.config)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrMissingConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, client.model)
			assert.Equal(t, openAIBaseURL, client.baseURL)
		})
	}
}

func openAIReply(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":    "chatcmpl-1",
		"model": "gpt-4o-mini",
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"},
		},
	})
	return string(body)
}

func TestOpenAIClientComplete(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, openAIReply(`{"expenses":[]}`))
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL + "/"})
	require.NoError(t, err)

	reply, err := client.Complete(context.Background(), Request{System: "sys", Prompt: "hola"})
	require.NoError(t, err)
	assert.Equal(t, `{"expenses":[]}`, reply)

	assert.Equal(t, openAIDefaultModel, captured["model"])
	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "hola", messages[1].(map[string]any)["content"])
}

func TestOpenAIClientDocument(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body = readAll(t, r)
		_, _ = fmt.Fprint(w, openAIReply("ok"))
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), Request{Prompt: "p", Document: []byte("%PDF"), MIMEType: "application/pdf"})
	require.NoError(t, err)
	assert.Contains(t, body, `"type":"file"`)
	assert.Contains(t, body, "data:application/pdf;base64,JVBERg==")

	_, err = client.Complete(context.Background(), Request{Prompt: "p", Document: []byte("x"), MIMEType: "image/png"})
	assert.ErrorIs(t, err, common.ErrUnsupportedInput)
}

func TestOpenAIClientErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantRetryable bool
		wantSentinel  error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantRetryable: true},
		{name: "rate limited", status: http.StatusTooManyRequests, body: "slow down", wantRetryable: true, wantSentinel: common.ErrRateLimit},
		{name: "bad key", status: http.StatusUnauthorized, body: "nope", wantRetryable: false},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantSentinel: common.ErrEmptyResponse},
		{name: "blank content", status: http.StatusOK, body: openAIReply("  "), wantSentinel: common.ErrEmptyResponse},
		{name: "garbage", status: http.StatusOK, body: "not json", wantRetryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			client, err := newOpenAIClient(Config{APIKey: "k", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = client.Complete(context.Background(), Request{Prompt: "p"})
			require.Error(t, err)
			if tt.wantSentinel != nil {
				assert.ErrorIs(t, err, tt.wantSentinel)
			}
			assert.Equal(t, tt.wantRetryable, common.IsRetryable(err))
		})
	}
}
