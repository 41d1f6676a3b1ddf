// Package fetch performs the outbound HTTP requests of a scan: GET for page
// content and HEAD for existence probes. Every request carries the
// configured User-Agent and is bounded by the client timeout.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hazyhaar/recallwatch/horosafe"
)

// DefaultUserAgent identifies the watcher to the monitored sites.
const DefaultUserAgent = "Mozilla/5.0 (compatible; RecallWatch/1.0)"

// ErrStatus is wrapped by errors for non-2xx responses.
var ErrStatus = errors.New("fetch: unexpected status")

// ErrEmptyResponse is returned when a 2xx response carries no content.
var ErrEmptyResponse = errors.New("fetch: empty response")

// Response is a successful GET.
type Response struct {
	Body        []byte
	StatusCode  int
	ContentType string
	FinalURL    string // after redirects
}

// Config configures the fetcher.
type Config struct {
	Timeout  time.Duration `yaml:"timeout"`   // per request. Default: 30s.
	MaxBytes int64         `yaml:"max_bytes"` // body cap, excess is truncated. Default: 10MB.
	// UserAgent sent with requests.
	UserAgent string `yaml:"user_agent"`
	// URLValidator validates URLs before fetch and on every redirect.
	// Default: horosafe.ValidateURL.
	URLValidator func(string) error `yaml:"-"`
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 * 1024 * 1024
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.URLValidator == nil {
		c.URLValidator = horosafe.ValidateURL
	}
}

// Fetcher performs HTTP requests with SSRF protection on redirects.
type Fetcher struct {
	client *http.Client
	config Config
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	cfg.defaults()
	validate := cfg.URLValidator
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				if err := validate(req.URL.String()); err != nil {
					return fmt.Errorf("redirect blocked (SSRF): %w", err)
				}
				return nil
			},
		},
		config: cfg,
	}
}

// Get retrieves url. Non-2xx statuses return a Response holding only the
// status code together with an error wrapping ErrStatus. A 2xx response
// whose body is blank returns ErrEmptyResponse.
func (f *Fetcher) Get(ctx context.Context, url string) (*Response, error) {
	resp, err := f.do(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return &Response{StatusCode: resp.StatusCode}, fmt.Errorf("%w: http %d", ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyResponse
	}
	return &Response{
		Body:        body,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// Head issues a HEAD request and returns the status code. Only transport
// failures are errors; every status is a valid answer.
func (f *Fetcher) Head(ctx context.Context, url string) (int, error) {
	resp, err := f.do(ctx, http.MethodHead, url)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func (f *Fetcher) do(ctx context.Context, method, url string) (*http.Response, error) {
	if err := f.config.URLValidator(url); err != nil {
		return nil, fmt.Errorf("URL blocked (SSRF): %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	if method == http.MethodGet {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http %s: %w", method, err)
	}
	return resp, nil
}
