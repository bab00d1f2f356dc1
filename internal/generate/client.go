package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client produces text for a prompt.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenRouterClient calls an OpenAI-compatible chat completions endpoint
// (OpenRouter by default).
type OpenRouterClient struct {
	apiKey     string
	url        string
	model      string
	referer    string
	httpClient *http.Client

	Stats *LLMStats
}

// ClientConfig configures an OpenRouterClient.
type ClientConfig struct {
	APIKey  string
	URL     string
	Model   string
	Referer string
	Timeout time.Duration
}

func NewOpenRouterClient(cfg ClientConfig) *OpenRouterClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &OpenRouterClient{
		apiKey:  cfg.APIKey,
		url:     cfg.URL,
		model:   cfg.Model,
		referer: cfg.Referer,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		Stats: NewLLMStats(time.Hour),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Code    any    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Model returns the configured model name.
func (c *OpenRouterClient) Model() string { return c.model }

// Generate sends prompt as a single user message and returns the reply text.
// Rate limits and server errors come back as *RetryableError.
func (c *OpenRouterClient) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := c.generate(ctx, prompt)
	c.Stats.Record(PartFrom(ctx), time.Since(start).Milliseconds(), err == nil)
	return text, err
}

func (c *OpenRouterClient) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.referer)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("chat completions: %w", ctx.Err())
		}
		// Network failures are transient.
		return "", &RetryableError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completions status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("chat completions error: %v: %s", apiResp.Error.Code, apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("empty response: no choices")
	}

	text := strings.TrimSpace(apiResp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty response: no content")
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("retryable error: %s", truncate(e.Message, 200))
	}
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// Close releases resources.
func (c *OpenRouterClient) Close() {
	c.httpClient.CloseIdleConnections()
}
