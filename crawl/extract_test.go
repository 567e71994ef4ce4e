package crawl

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractText_TitleAndEntities(t *testing.T) {
	// WHAT: Title is trimmed, scripts are dropped, entities are decoded.
	// WHY: This is the canonical extraction contract for crawled pages.
	raw := `<html><head><title> A </title></head><body><script>evil()</script><p>Hello &amp; world</p></body></html>`

	got := ExtractText(raw)
	if got.Title != "A" {
		t.Errorf("Title = %q, want %q", got.Title, "A")
	}
	if got.Content != "Hello & world" {
		t.Errorf("Content = %q, want %q", got.Content, "Hello & world")
	}
}

func TestExtractText_RemovesStyleNoscriptComments(t *testing.T) {
	raw := `<body><style>p{color:red}</style><noscript>enable js</noscript><!-- hidden -->visible</body>`
	got := ExtractText(raw)
	if got.Content != "visible" {
		t.Errorf("Content = %q, want %q", got.Content, "visible")
	}
}

func TestExtractText_NoTitle(t *testing.T) {
	got := ExtractText(`<p>body only</p>`)
	if got.Title != "" {
		t.Errorf("Title = %q, want empty", got.Title)
	}
	if got.Content != "body only" {
		t.Errorf("Content = %q", got.Content)
	}
}

func TestExtractText_CollapsesWhitespace(t *testing.T) {
	got := ExtractText("<p>a</p>\n\n\t<p>b   c</p>")
	if got.Content != "a b c" {
		t.Errorf("Content = %q, want %q", got.Content, "a b c")
	}
}

func TestExtractText_TruncatesAtCap(t *testing.T) {
	// WHAT: Content over 10k chars is cut to exactly 10k plus an ellipsis;
	// content of exactly 10k is left untouched.
	// WHY: The cap is a hard contract for downstream storage and embedding.
	exact := strings.Repeat("x", MaxContentLength)
	got := ExtractText("<p>" + exact + "</p>")
	if got.Content != exact {
		t.Errorf("exact-cap content altered: len = %d", len(got.Content))
	}

	over := strings.Repeat("y", MaxContentLength+1)
	got = ExtractText("<p>" + over + "</p>")
	want := strings.Repeat("y", MaxContentLength) + "..."
	if got.Content != want {
		t.Errorf("truncated content: len = %d, want %d", len(got.Content), len(want))
	}
}

func TestExtractText_TruncationCountsRunes(t *testing.T) {
	over := strings.Repeat("é", MaxContentLength+10)
	got := ExtractText(over)
	if n := utf8.RuneCountInString(strings.TrimSuffix(got.Content, "...")); n != MaxContentLength {
		t.Errorf("rune count = %d, want %d", n, MaxContentLength)
	}
}

func TestExtractText_EmptyAndMalformed(t *testing.T) {
	for _, raw := range []string{"", "<", "<html", "<script>never closed"} {
		got := ExtractText(raw)
		if got.Title != "" && raw == "" {
			t.Errorf("ExtractText(%q).Title = %q", raw, got.Title)
		}
		_ = got // must not panic
	}
}
