package crawl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// FetcherConfig configures the page fetcher.
type FetcherConfig struct {
	Timeout  time.Duration // HTTP timeout. Default: 30s.
	MaxBytes int64         // Max response body size. Default: 5MB.
	// UserAgent sent with requests.
	UserAgent string
	// URLValidator screens every URL before it is fetched, including
	// each redirect hop. Default: ValidateURL. Tests that fetch from
	// local listeners override it.
	URLValidator func(string) error
}

func (c *FetcherConfig) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 5 * 1024 * 1024
	}
	if c.UserAgent == "" {
		c.UserAgent = "ChatlasBot/1.0 (+https://chatlas.app/bot)"
	}
	if c.URLValidator == nil {
		c.URLValidator = ValidateURL
	}
}

// Fetcher performs single HTTP GETs for the crawl engine. No retry: a failed
// fetch produces one failed crawl result and retry policy, if any, belongs to
// the caller.
type Fetcher struct {
	client *http.Client
	config FetcherConfig
}

// NewFetcher creates a Fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	cfg.defaults()
	validate := cfg.URLValidator
	client := &http.Client{
		Timeout: cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects (%d)", len(via))
			}
			if err := validate(req.URL.String()); err != nil {
				return fmt.Errorf("redirect blocked: %w", err)
			}
			return nil
		},
	}
	return &Fetcher{
		client: client,
		config: cfg,
	}
}

// Fetch retrieves a URL and returns its raw HTML. Unsafe target addresses,
// non-2xx statuses, non-HTML content types, and transport errors all return
// an error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := f.config.URLValidator(rawURL); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("http %d", resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		return "", fmt.Errorf("content-type %q is not text/html", ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return string(body), nil
}
