// Package chat is a minimal client for OpenAI-compatible chat completion
// endpoints. It serves both the vision OCR call (text + image parts) and
// the text-only report summary.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hazyhaar/recallwatch/horosafe"
)

// ErrNoChoices is returned when the endpoint answers without a completion.
var ErrNoChoices = errors.New("chat: response has no choices")

// Config configures a Client.
type Config struct {
	BaseURL string        `yaml:"base_url"` // e.g. https://api.openai.com; "/v1/chat/completions" is appended
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com"
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
}

// Request is an OpenAI chat completions request.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float32   `json:"temperature"`
}

// Message is a chat message with text and image parts.
type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart is one text or image_url part.
type ContentPart struct {
	Type     string    `json:"type"` // "text" or "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL references an image by URL or data URI.
type ImageURL struct {
	URL string `json:"url"`
}

// Response is the subset of the completions response that is read.
type Response struct {
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice holds one completion.
type Choice struct {
	Message      ResponseMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

// ResponseMessage is the assistant message of a choice.
type ResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token consumption.
type Usage struct {
	TotalTokens int `json:"total_tokens"`
}

// Text builds a text content part.
func Text(s string) ContentPart { return ContentPart{Type: "text", Text: s} }

// Image builds an image_url content part.
func Image(url string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: url}}
}

// Client sends chat completion requests.
type Client struct {
	http   *http.Client
	config Config
	logger *slog.Logger
}

// New creates a Client.
func New(cfg Config, logger *slog.Logger) *Client {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:   &http.Client{Timeout: cfg.Timeout},
		config: cfg,
		logger: logger,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.config.Model }

// Complete sends a single user message built from parts and returns the
// first choice's content.
func (c *Client) Complete(ctx context.Context, maxTokens int, parts ...ContentPart) (string, error) {
	req := Request{
		Model:     c.config.Model,
		Messages:  []Message{{Role: "user", Content: parts}},
		MaxTokens: maxTokens,
	}
	resp, err := c.Send(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Message.Content, nil
}

// Send posts req to /v1/chat/completions.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	body, err := horosafe.LimitedReadAll(resp.Body, horosafe.MaxResponseBody)
	if err != nil {
		return nil, fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("chat: http error", "status", resp.StatusCode, "duration", time.Since(start))
		return nil, fmt.Errorf("chat: status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, ErrNoChoices
	}
	c.logger.Debug("chat: response received",
		"duration", time.Since(start),
		"tokens", out.Usage.TotalTokens,
		"finish_reason", out.Choices[0].FinishReason)
	return &out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
