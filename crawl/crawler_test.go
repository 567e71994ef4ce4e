package crawl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeStore records upserts in memory, optionally failing specific URLs.
type fakeStore struct {
	pages    map[string]*Page
	failURLs map[string]bool
	upserts  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{pages: make(map[string]*Page), failURLs: make(map[string]bool)}
}

func (s *fakeStore) UpsertPage(_ context.Context, p *Page) error {
	s.upserts++
	if s.failURLs[p.URL] {
		return errors.New("storage down")
	}
	s.pages[p.ChatbotID+"|"+p.URL] = p
	return nil
}

// pad returns filler text long enough to clear the minimum-content threshold.
func pad() string {
	return strings.Repeat("lorem ipsum dolor sit amet ", 4)
}

func htmlPage(title, body string, links ...string) string {
	var sb strings.Builder
	sb.WriteString("<html><head><title>" + title + "</title></head><body><p>" + body + "</p>")
	for _, l := range links {
		sb.WriteString(fmt.Sprintf(`<a href="%s">link</a>`, l))
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

func serveSite(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCrawl_BreadthFirstAndPersists(t *testing.T) {
	srv := serveSite(t, map[string]string{
		"/":  htmlPage("Home", pad(), "/a", "/b"),
		"/a": htmlPage("A", pad()),
		"/b": htmlPage("B", pad()),
	})

	store := newFakeStore()
	c := New(store, Config{Fetcher: FetcherConfig{URLValidator: allowAnyURL}})
	report := c.Crawl(context.Background(), "bot1", srv.URL, 10)

	if !report.Success {
		t.Fatal("report not successful")
	}
	if report.PagesCrawled != 3 || report.PagesSaved != 3 {
		t.Errorf("crawled=%d saved=%d, want 3/3", report.PagesCrawled, report.PagesSaved)
	}
	// FIFO discovery order: seed first, then its links in document order.
	wantOrder := []string{srv.URL, srv.URL + "/a", srv.URL + "/b"}
	for i, r := range report.Results {
		if r.URL != wantOrder[i] {
			t.Errorf("results[%d].URL = %q, want %q", i, r.URL, wantOrder[i])
		}
		if !r.Success {
			t.Errorf("results[%d] not successful", i)
		}
	}
	if len(store.pages) != 3 {
		t.Errorf("stored pages = %d, want 3", len(store.pages))
	}
}

func TestCrawl_PageCeiling(t *testing.T) {
	// WHAT: Never visits more than min(requested, 20) distinct URLs even
	// when more are discoverable.
	pages := map[string]string{}
	var links []string
	for i := range 30 {
		links = append(links, fmt.Sprintf("/p%d", i))
	}
	pages["/"] = htmlPage("Hub", pad(), links...)
	for i := range 30 {
		pages[fmt.Sprintf("/p%d", i)] = htmlPage("P", pad())
	}
	srv := serveSite(t, pages)

	store := newFakeStore()
	c := New(store, Config{Fetcher: FetcherConfig{URLValidator: allowAnyURL}})

	report := c.Crawl(context.Background(), "bot1", srv.URL, 50)
	if report.PagesCrawled != MaxPageLimit {
		t.Errorf("requested 50: crawled = %d, want %d", report.PagesCrawled, MaxPageLimit)
	}

	report = c.Crawl(context.Background(), "bot1", srv.URL, 3)
	if report.PagesCrawled != 3 {
		t.Errorf("requested 3: crawled = %d, want 3", report.PagesCrawled)
	}
}

func TestCrawl_FetchFailureDoesNotAbort(t *testing.T) {
	srv := serveSite(t, map[string]string{
		"/":   htmlPage("Home", pad(), "/missing", "/ok"),
		"/ok": htmlPage("OK", pad()),
	})

	store := newFakeStore()
	c := New(store, Config{Fetcher: FetcherConfig{URLValidator: allowAnyURL}})
	report := c.Crawl(context.Background(), "bot1", srv.URL, 10)

	if report.PagesCrawled != 3 {
		t.Fatalf("crawled = %d, want 3", report.PagesCrawled)
	}
	if report.PagesSaved != 2 {
		t.Errorf("saved = %d, want 2", report.PagesSaved)
	}
	var missing *PageResult
	for i := range report.Results {
		if strings.HasSuffix(report.Results[i].URL, "/missing") {
			missing = &report.Results[i]
		}
	}
	if missing == nil || missing.Success || missing.Title != "" {
		t.Errorf("missing page result = %+v, want failed with empty title", missing)
	}
}

func TestCrawl_MinContentBoundary(t *testing.T) {
	// WHAT: 49-char content is rejected, 50-char content is persisted.
	srv := serveSite(t, map[string]string{
		"/short": htmlPage("S", strings.Repeat("a", MinContentLength-1)),
		"/exact": htmlPage("E", strings.Repeat("b", MinContentLength)),
	})

	store := newFakeStore()
	c := New(store, Config{Fetcher: FetcherConfig{URLValidator: allowAnyURL}})

	report := c.Crawl(context.Background(), "bot1", srv.URL+"/short", 1)
	if report.PagesSaved != 0 {
		t.Errorf("short page saved; content below threshold must not persist")
	}

	report = c.Crawl(context.Background(), "bot1", srv.URL+"/exact", 1)
	if report.PagesSaved != 1 {
		t.Errorf("exact-threshold page not saved")
	}
}

func TestCrawl_ThinPageLinksStillFollowed(t *testing.T) {
	// WHAT: A too-thin page is not persisted but its links are enqueued.
	// WHY: Link discovery is independent of content-quality rejection.
	srv := serveSite(t, map[string]string{
		"/":     htmlPage("Thin", "tiny", "/full"),
		"/full": htmlPage("Full", pad()),
	})

	store := newFakeStore()
	c := New(store, Config{Fetcher: FetcherConfig{URLValidator: allowAnyURL}})
	report := c.Crawl(context.Background(), "bot1", srv.URL, 10)

	if report.PagesCrawled != 2 {
		t.Fatalf("crawled = %d, want 2", report.PagesCrawled)
	}
	if report.PagesSaved != 1 {
		t.Errorf("saved = %d, want 1 (thin seed skipped, linked page saved)", report.PagesSaved)
	}
	if report.Results[0].Success {
		t.Error("thin seed should be a failed result")
	}
}

func TestCrawl_URLDedup(t *testing.T) {
	srv := serveSite(t, map[string]string{
		"/":  htmlPage("Home", pad(), "/a", "/a/", "/a#section"),
		"/a": htmlPage("A", pad()),
	})

	store := newFakeStore()
	c := New(store, Config{Fetcher: FetcherConfig{URLValidator: allowAnyURL}})
	report := c.Crawl(context.Background(), "bot1", srv.URL, 10)

	if report.PagesCrawled != 2 {
		t.Errorf("crawled = %d, want 2 (three spellings of /a dedup to one)", report.PagesCrawled)
	}
}

func TestCrawl_UpsertFailureRecordedNotFatal(t *testing.T) {
	srv := serveSite(t, map[string]string{
		"/":  htmlPage("Home", pad(), "/a"),
		"/a": htmlPage("A", pad()),
	})

	store := newFakeStore()
	c := New(store, Config{Fetcher: FetcherConfig{URLValidator: allowAnyURL}})
	store.failURLs[srv.URL] = true

	report := c.Crawl(context.Background(), "bot1", srv.URL, 10)
	if report.PagesCrawled != 2 {
		t.Fatalf("crawled = %d, want 2", report.PagesCrawled)
	}
	if report.PagesSaved != 1 {
		t.Errorf("saved = %d, want 1", report.PagesSaved)
	}
	if report.Results[0].Success {
		t.Error("seed with failing storage should be a failed result")
	}
}
