package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/Veraticus/gastos/internal/common"
)

const geminiDefaultModel = "gemini-2.5-flash"

// geminiMIMETypes lists inline document types the Gemini API reads.
var geminiMIMETypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
	"text/plain":      true,
}

// geminiClient implements the Client interface on top of the genai SDK.
type geminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

func newGeminiClient(ctx context.Context, cfg Config) (*geminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", common.ErrMissingConfig)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: newHTTPClient(),
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = geminiDefaultModel
	}

	return &geminiClient{
		client:      client,
		model:       model,
		temperature: float32(cfg.Temperature),
		maxTokens:   int32(cfg.maxTokens()),
	}, nil
}

// SupportsDocument reports whether mimeType can be sent as inline data.
func (c *geminiClient) SupportsDocument(mimeType string) bool {
	return geminiMIMETypes[mimeType]
}

// Complete calls GenerateContent with the prompt and, when present, the
// document as an inline blob.
func (c *geminiClient) Complete(ctx context.Context, req Request) (string, error) {
	parts := []*genai.Part{{Text: req.Prompt}}
	if len(req.Document) > 0 {
		if !c.SupportsDocument(req.MIMEType) {
			return "", fmt.Errorf("%w: gemini cannot read %s documents", common.ErrUnsupportedInput, req.MIMEType)
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: req.MIMEType,
				Data:     req.Document,
			},
		})
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	temperature := c.temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: c.maxTokens,
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", &common.RetryableError{
			Err:       fmt.Errorf("failed to generate content: %w", err),
			Retryable: ctx.Err() == nil,
		}
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini: %w", common.ErrEmptyResponse)
	}
	return text, nil
}
