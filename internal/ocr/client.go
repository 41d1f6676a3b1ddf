// Package ocr obtains text transcripts of notice images from a vision
// model and parses them into product/date groups.
//
// Transcription never fails from the caller's point of view: an image that
// cannot be read yields an empty transcript, and the scan engine treats a
// changed image set without any extracted date as a possible OCR failure.
package ocr

import (
	"context"
	"html"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/recallwatch/internal/chat"
)

// Extractor transcribes one image. Implementations return "" on failure.
type Extractor interface {
	ExtractText(ctx context.Context, imageURL string) string
}

// DefaultPrompt asks for the block layout ParseProducts reads.
const DefaultPrompt = `You are reading a product notice image from an infant formula retailer.
Transcribe every product listed together with its affected expiry dates.
For each product output exactly one block:

제품명: <product name exactly as printed>
MHD: <date>, <date>, ...
---

Write every date as DD-MM-YYYY. Output only the blocks, no commentary.`

// Config configures the vision client.
type Config struct {
	Chat        chat.Config `yaml:"chat"`
	Prompt      string      `yaml:"prompt"`
	MaxTokens   int         `yaml:"max_tokens"`
	Concurrency int         `yaml:"concurrency"` // images transcribed in parallel. Default: 3.
}

func (c *Config) defaults() {
	if c.Prompt == "" {
		c.Prompt = DefaultPrompt
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 2000
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 3
	}
}

// Client is an Extractor backed by an OpenAI-compatible vision model.
type Client struct {
	chat     *chat.Client
	config   Config
	logger   *slog.Logger
	sanitize *bluemonday.Policy
}

// New creates a Client.
func New(cfg Config, logger *slog.Logger) *Client {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		chat:     chat.New(cfg.Chat, logger),
		config:   cfg,
		logger:   logger,
		sanitize: bluemonday.StrictPolicy(),
	}
}

// Concurrency returns the configured per-batch image parallelism.
func (c *Client) Concurrency() int { return c.config.Concurrency }

// ExtractText transcribes imageURL. Failures are logged and yield "".
func (c *Client) ExtractText(ctx context.Context, imageURL string) string {
	out, err := c.chat.Complete(ctx, c.config.MaxTokens, chat.Text(c.config.Prompt), chat.Image(imageURL))
	if err != nil {
		c.logger.Warn("ocr: transcription failed", "image", imageURL, "error", err)
		return ""
	}
	return c.Clean(out)
}

// Clean strips any markup the model echoed back and unescapes entities so
// the transcript is plain text.
func (c *Client) Clean(s string) string {
	s = c.sanitize.Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(s))
}

// ExtractAll transcribes urls with at most concurrency calls in flight and
// returns the transcripts in input order. Individual failures yield "".
func ExtractAll(ctx context.Context, ex Extractor, urls []string, concurrency int) []string {
	out := make([]string, len(urls))
	if concurrency <= 0 {
		concurrency = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, u := range urls {
		g.Go(func() error {
			out[i] = ex.ExtractText(gctx, u)
			return nil
		})
	}
	g.Wait()
	return out
}

// Join concatenates transcripts with the block delimiter so that blocks
// from different images never merge.
func Join(transcripts []string) string {
	var parts []string
	for _, t := range transcripts {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n---\n")
}
