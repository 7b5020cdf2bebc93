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
	anthropicBaseURL      = "https://api.anthropic.com/v1"
	anthropicDefaultModel = "claude-3-5-haiku-latest"
	anthropicVersion      = "2023-06-01"
)

// anthropicClient implements the Client interface for the Anthropic messages API.
type anthropicClient struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

// newAnthropicClient creates a new Anthropic API client.
func newAnthropicClient(cfg Config) (*anthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = anthropicDefaultModel
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}

	return &anthropicClient{
		apiKey:      cfg.APIKey,
		model:       model,
		baseURL:     strings.TrimRight(baseURL, "/"),
		temperature: cfg.Temperature,
		maxTokens:   cfg.maxTokens(),
		httpClient:  newHTTPClient(),
	}, nil
}

// anthropicResponse represents the Anthropic API response structure.
type anthropicResponse struct {
	ID         string `json:"id"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Content    []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// SupportsDocument reports whether mimeType can be sent as a document block.
func (c *anthropicClient) SupportsDocument(mimeType string) bool {
	return mimeType == "application/pdf"
}

// Complete sends a messages request and returns the concatenated text blocks.
func (c *anthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	var content any = req.Prompt
	if len(req.Document) > 0 {
		if !c.SupportsDocument(req.MIMEType) {
			return "", fmt.Errorf("%w: anthropic cannot read %s documents", common.ErrUnsupportedInput, req.MIMEType)
		}
		content = []map[string]any{
			{
				"type": "document",
				"source": map[string]string{
					"type":       "base64",
					"media_type": req.MIMEType,
					"data":       base64.StdEncoding.EncodeToString(req.Document),
				},
			},
			{"type": "text", "text": req.Prompt},
		}
	}

	requestBody := map[string]any{
		"model":       c.model,
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
		"messages": []map[string]any{
			{"role": "user", "content": content},
		},
	}
	if req.System != "" {
		requestBody["system"] = req.System
	}

	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": anthropicVersion,
	}

	var response anthropicResponse
	if err := postJSON(ctx, c.httpClient, "anthropic", c.baseURL+"/messages", headers, requestBody, &response); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("anthropic: %w", common.ErrEmptyResponse)
	}
	return sb.String(), nil
}
