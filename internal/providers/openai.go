package providers

import (
	"net/http"
	"time"
)

const (
	OpenAIName    = "openai"
	OpenAIBaseURL = "https://api.openai.com/v1"
)

// OpenAIConfig holds configuration for the OpenAI-compatible client.
// Any endpoint speaking the chat-completions dialect works (OpenAI, Azure,
// OpenRouter, Ollama, vLLM, ...).
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
	MaxRetries   int           // Max retry attempts (default: 3)
	RetryDelay   time.Duration // Base delay between retries (default: 1s)
}

// OpenAIClient implements LLMClient against an OpenAI-compatible API.
type OpenAIClient struct {
	apiKey       string
	baseURL      string
	defaultModel string
	client       *http.Client
	streamClient *http.Client // no Timeout; streams are bounded by ctx
	maxRetries   int
	retryDelay   time.Duration
}

// NewOpenAIClient creates a new OpenAI-compatible client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = OpenAIBaseURL
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}

	return &OpenAIClient{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		defaultModel: cfg.DefaultModel,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		streamClient: &http.Client{},
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
	}
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string {
	return OpenAIName
}

var _ LLMClient = (*OpenAIClient)(nil)
