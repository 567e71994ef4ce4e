package crawl

import (
	"net/url"
	"regexp"
	"strings"
)

// hrefRe is a permissive scan for anchor hrefs. This is intentionally not a
// DOM parse: the traversal only needs a best-effort link harvest, and a regex
// over raw markup keeps the accepted-input behaviour predictable.
var hrefRe = regexp.MustCompile(`(?is)<a\s[^>]*?href\s*=\s*["']([^"']+)["']`)

// skippedSchemes are href prefixes that never denote a crawlable page.
var skippedSchemes = []string{"javascript:", "mailto:", "tel:"}

// ExtractLinks returns the unique same-domain absolute URLs referenced by
// anchors in rawHTML, resolved against baseURL, in first-seen order.
// Fragment-only and protocol-handler links are discarded; malformed hrefs are
// silently dropped.
func ExtractLinks(rawHTML, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]bool)

	for _, m := range hrefRe.FindAllStringSubmatch(rawHTML, -1) {
		href := strings.TrimSpace(m[1])
		if href == "" || strings.HasPrefix(href, "#") || hasSkippedScheme(href) {
			continue
		}

		resolved, err := base.Parse(href)
		if err != nil {
			continue
		}
		if resolved.Hostname() != base.Hostname() {
			continue
		}

		resolved.Fragment = ""
		u := strings.TrimSuffix(resolved.String(), "/")
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		links = append(links, u)
	}

	return links
}

func hasSkippedScheme(href string) bool {
	lower := strings.ToLower(href)
	for _, s := range skippedSchemes {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}

// NormalizeURL canonicalises a crawl target: the fragment and a single
// trailing slash are stripped. (chatbot_id, NormalizeURL(url)) is the dedup
// key both in-memory and in storage.
func NormalizeURL(raw string) string {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSuffix(raw, "/")
}
