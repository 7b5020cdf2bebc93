package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/Veraticus/gastos/internal/common"
)

const (
	openAIBaseURL      = "https://api.openai.com/v1"
	openAIDefaultModel = "gpt-4o-mini"
)

// openAIClient implements the Client interface for the OpenAI chat API.
type openAIClient struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

// newOpenAIClient creates a new OpenAI API client.
func newOpenAIClient(cfg Config) (*openAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = openAIDefaultModel
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openAIBaseURL
	}

	return &openAIClient{
		apiKey:      cfg.APIKey,
		model:       model,
		baseURL:     strings.TrimRight(baseURL, "/"),
		temperature: cfg.Temperature,
		maxTokens:   cfg.maxTokens(),
		httpClient:  newHTTPClient(),
	}, nil
}

// openAIResponse represents the OpenAI API response structure.
type openAIResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// SupportsDocument reports whether mimeType can be attached as a file part.
func (c *openAIClient) SupportsDocument(mimeType string) bool {
	return mimeType == "application/pdf"
}

// Complete sends a chat completion request and returns the raw reply.
func (c *openAIClient) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]map[string]any, 0, 2)
	if req.System != "" {
		messages = append(messages, map[string]any{"role": "system", "content": req.System})
	}

	if len(req.Document) > 0 {
		if !c.SupportsDocument(req.MIMEType) {
			return "", fmt.Errorf("%w: openai cannot read %s documents", common.ErrUnsupportedInput, req.MIMEType)
		}
		messages = append(messages, map[string]any{
			"role": "user",
			"content": []map[string]any{
				{"type": "text", "text": req.Prompt},
				{
					"type": "file",
					"file": map[string]string{
						"filename":  "document.pdf",
						"file_data": "data:" + req.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(req.Document),
					},
				},
			},
		})
	} else {
		messages = append(messages, map[string]any{"role": "user", "content": req.Prompt})
	}

	requestBody := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	}

	var response openAIResponse
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	if err := postJSON(ctx, c.httpClient, "OpenAI", c.baseURL+"/chat/completions", headers, requestBody, &response); err != nil {
		return "", err
	}

	if len(response.Choices) == 0 || strings.TrimSpace(response.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("openai: %w", common.ErrEmptyResponse)
	}
	return response.Choices[0].Message.Content, nil
}
