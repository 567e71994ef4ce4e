// Package crawl implements the website ingestion engine: a bounded
// breadth-first traversal that fetches same-domain pages, extracts their
// text, and persists them for downstream chunking and embedding.
package crawl

import (
	"regexp"
	"strings"
)

// MaxContentLength caps extracted page content. Content beyond the cap is
// truncated and marked with an ellipsis; downstream storage and embedding
// must tolerate mid-word cuts.
const MaxContentLength = 10_000

const ellipsis = "..."

// PageContent is the output of text extraction for one HTML document.
type PageContent struct {
	Title   string
	Content string
}

var (
	titleRe    = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	scriptRe   = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe    = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptRe = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	commentRe  = regexp.MustCompile(`(?s)<!--.*?-->`)
	tagRe      = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// The fixed entity set decoded after tag stripping. A full entity table is
// deliberately out of scope; these cover the overwhelming majority of
// marketing-page text.
var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
)

// ExtractText strips a raw HTML document down to a title and a bounded
// plain-text body. It never fails: malformed or absent tags simply yield a
// shorter or empty result.
func ExtractText(rawHTML string) PageContent {
	var title string
	if m := titleRe.FindStringSubmatch(rawHTML); m != nil {
		title = strings.TrimSpace(m[1])
	}

	body := titleRe.ReplaceAllString(rawHTML, " ")
	body = scriptRe.ReplaceAllString(body, " ")
	body = styleRe.ReplaceAllString(body, " ")
	body = noscriptRe.ReplaceAllString(body, " ")
	body = commentRe.ReplaceAllString(body, " ")
	body = tagRe.ReplaceAllString(body, " ")
	body = entityReplacer.Replace(body)
	body = strings.TrimSpace(spaceRe.ReplaceAllString(body, " "))

	if runes := []rune(body); len(runes) > MaxContentLength {
		body = string(runes[:MaxContentLength]) + ellipsis
	}

	return PageContent{Title: title, Content: body}
}
