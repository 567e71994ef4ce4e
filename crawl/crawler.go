package crawl

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"
)

const (
	// MaxPageLimit is the hard ceiling on pages visited per crawl,
	// regardless of what the caller requests. Resource protection, not a
	// default.
	MaxPageLimit = 20

	// MinContentLength is the minimum extracted-content length for a page
	// to be persisted. Shorter pages (login walls, redirects, empty
	// shells) are recorded as failures but their links are still followed.
	MinContentLength = 50
)

// Page is the persisted result of successfully processing one crawl target.
type Page struct {
	ChatbotID string
	URL       string
	Title     string
	Content   string
	CrawledAt time.Time
}

// PageStore persists crawled pages. Upsert semantics keyed on
// (chatbot_id, normalized URL): re-crawling overwrites, never duplicates.
type PageStore interface {
	UpsertPage(ctx context.Context, p *Page) error
}

// PageResult reports the outcome for one visited URL.
type PageResult struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Success bool   `json:"success"`
}

// Report is the structured result of one crawl invocation.
type Report struct {
	Success      bool         `json:"success"`
	PagesCrawled int          `json:"pages_crawled"`
	PagesSaved   int          `json:"pages_saved"`
	Results      []PageResult `json:"results"`
}

// Config configures a Crawler.
type Config struct {
	Fetcher FetcherConfig
	Logger  *slog.Logger
}

// Crawler drives the fetch → extract → persist loop breadth-first over
// same-domain pages. Pages are fetched strictly one at a time in FIFO
// discovery order; the visited set and queue are local to one invocation.
type Crawler struct {
	fetcher *Fetcher
	store   PageStore
	logger  *slog.Logger
}

// New creates a Crawler persisting into store.
func New(store PageStore, cfg Config) *Crawler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Crawler{
		fetcher: NewFetcher(cfg.Fetcher),
		store:   store,
		logger:  logger,
	}
}

// Crawl traverses same-domain pages breadth-first from seedURL, visiting at
// most min(maxPages, MaxPageLimit) distinct normalized URLs. Non-positive
// maxPages requests fall back to the ceiling.
//
// Per-page problems (fetch failure, thin content, storage error) are recorded
// in the report and never abort the crawl. Structural input validation is the
// caller's responsibility.
func (c *Crawler) Crawl(ctx context.Context, chatbotID, seedURL string, maxPages int) *Report {
	limit := maxPages
	if limit <= 0 || limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	log := c.logger.With("chatbot_id", chatbotID, "seed", seedURL)
	start := time.Now()

	visited := make(map[string]bool)
	queued := make(map[string]bool)
	queue := []string{seedURL}

	var results []PageResult
	saved := 0

	for len(queue) > 0 && len(visited) < limit {
		u := NormalizeURL(queue[0])
		queue = queue[1:]

		if visited[u] {
			continue
		}
		visited[u] = true

		rawHTML, err := c.fetcher.Fetch(ctx, u)
		if err != nil {
			log.Warn("crawl: fetch failed", "url", u, "error", err)
			results = append(results, PageResult{URL: u})
			continue
		}

		page := ExtractText(rawHTML)
		switch {
		case utf8.RuneCountInString(page.Content) < MinContentLength:
			log.Debug("crawl: content too thin, not persisting", "url", u)
			results = append(results, PageResult{URL: u, Title: page.Title})
		default:
			err := c.store.UpsertPage(ctx, &Page{
				ChatbotID: chatbotID,
				URL:       u,
				Title:     page.Title,
				Content:   page.Content,
				CrawledAt: time.Now().UTC(),
			})
			if err != nil {
				log.Warn("crawl: upsert failed", "url", u, "error", err)
				results = append(results, PageResult{URL: u, Title: page.Title})
			} else {
				results = append(results, PageResult{URL: u, Title: page.Title, Success: true})
				saved++
			}
		}

		// Link discovery proceeds independently of content-quality
		// rejection, but stops once the budget is reached.
		if len(visited) < limit {
			for _, link := range ExtractLinks(rawHTML, u) {
				if !visited[link] && !queued[link] {
					queued[link] = true
					queue = append(queue, link)
				}
			}
		}
	}

	log.Info("crawl: done",
		"pages_crawled", len(results),
		"pages_saved", saved,
		"duration_ms", time.Since(start).Milliseconds())

	return &Report{
		Success:      true,
		PagesCrawled: len(results),
		PagesSaved:   saved,
		Results:      results,
	}
}
