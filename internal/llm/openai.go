package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Base URLs for the OpenAI-compatible chat completion providers.
const (
	OpenAIBaseURL = "https://api.openai.com/v1"
	GroqBaseURL   = "https://api.groq.com/openai/v1"
)

const defaultRequestTimeout = 120 * time.Second

// Options configures an OpenAI-compatible client.
type Options struct {
	// APIKey is the bearer token (required).
	APIKey string

	// BaseURL selects the endpoint; default is the OpenAI API. Point it at
	// GroqBaseURL for Groq or any other compatible gateway.
	BaseURL string

	// Model is the chat model name, e.g. "gpt-4o-mini".
	Model string

	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// OpenAI generates completions against an OpenAI-compatible
// /chat/completions endpoint.
type OpenAI struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAI creates a client from opts, filling in defaults for the base
// URL and timeout.
func NewOpenAI(opts Options) *OpenAI {
	if opts.BaseURL == "" {
		opts.BaseURL = OpenAIBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultRequestTimeout
	}
	return &OpenAI{
		client:      &http.Client{Timeout: opts.Timeout},
		baseURL:     opts.BaseURL,
		apiKey:      opts.APIKey,
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
	}
}

// chatCompletionRequest is the /chat/completions request format.
type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float32             `json:"temperature"`
}

type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate sends the prompt as a single user message and returns the first
// choice. Provider-side failures are wrapped in ErrProvider.
func (c *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := chatCompletionRequest{
		Model:       c.model,
		Messages:    []chatCompletionMsg{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
	}
	if c.maxTokens > 0 {
		reqBody.MaxTokens = c.maxTokens
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrProvider, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrProvider, chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrProvider, resp.StatusCode, string(body))
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no response choices returned", ErrProvider)
	}
	return chatResp.Choices[0].Message.Content, nil
}
