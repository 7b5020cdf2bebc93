package llm

import (
	"context"
	"net/http"
	"time"
)

// Client defines the interface for LLM providers.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// DocumentClient is implemented by providers that accept binary documents
// alongside the prompt.
type DocumentClient interface {
	SupportsDocument(mimeType string) bool
}

// Request is a single completion call.
type Request struct {
	System   string
	Prompt   string
	MIMEType string
	Document []byte
}

// Config selects and tunes a provider.
type Config struct {
	Provider      string
	APIKey        string
	Model         string
	BaseURL       string
	MaxRetries    int
	RetryDelay    time.Duration
	CacheTTL      time.Duration
	RateLimit     int
	Temperature   float64
	MaxTokens     int
	MaxInputChars int
}

// Default settings applied when a Config field is zero.
const (
	DefaultMaxTokens     = 4000
	DefaultMaxInputChars = 10000
	DefaultMaxRetries    = 3
	DefaultRetryDelay    = time.Second
)

func (c Config) maxTokens() int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return DefaultMaxTokens
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 120 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
