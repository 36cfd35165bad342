package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dmitrijs2005/gophjournal/internal/common"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com/v1/messages"
	DefaultModel     = "claude-3-5-haiku-latest"
	anthropicVersion = "2023-06-01"
	defaultMaxTokens = 300
	maxAttempts      = 3
	maxErrBodyLen    = 300
)

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
}

type Option func(*AnthropicClient)

func WithBaseURL(u string) Option {
	return func(c *AnthropicClient) {
		if u != "" {
			c.baseURL = u
		}
	}
}

func WithModel(m string) Option {
	return func(c *AnthropicClient) {
		if m != "" {
			c.model = m
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *AnthropicClient) {
		if hc != nil {
			c.client = hc
		}
	}
}

func NewAnthropicClient(apiKey string, opts ...Option) *AnthropicClient {
	c := &AnthropicClient{
		apiKey:    apiKey,
		baseURL:   DefaultBaseURL,
		model:     DefaultModel,
		maxTokens: defaultMaxTokens,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// Summarize sends the instruction as the system prompt and the entry as the
// user message. 429 and 5xx answers are retried while ctx allows it.
func (c *AnthropicClient) Summarize(ctx context.Context, instruction, text string) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    instruction,
		Messages:  []message{{Role: "user", Content: text}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond

	out, err := backoff.Retry(ctx, func() (string, error) {
		return c.do(ctx, body)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(maxAttempts))
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrSummarizerUnavailable, err)
	}
	return out, nil
}

func (c *AnthropicClient) do(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", backoff.Permanent(err)
		}
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := fmt.Errorf("anthropic API error (%d): %s", resp.StatusCode, snippet(respBody))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", apiErr
		}
		return "", backoff.Permanent(apiErr)
	}

	var apiResp messagesResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}

	var sb strings.Builder
	for _, part := range apiResp.Content {
		if part.Type == "text" {
			sb.WriteString(part.Text)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", backoff.Permanent(ErrEmptySummary)
	}
	return out, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrBodyLen {
		return s[:maxErrBodyLen] + "..."
	}
	return s
}
