package docpipe

import (
	"bytes"
	"os"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	sanitizer   = bluemonday.UGCPolicy()
	mdConverter = converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
)

// parseHTML reads an HTML file, sanitizes it, converts it to markdown,
// and sections the markdown. The title comes from the <title> element;
// sanitization happens before conversion so script and style payloads
// never reach the sectioned output.
func parseHTML(path string, doc *Document) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if root, err := html.Parse(bytes.NewReader(data)); err == nil {
		doc.Title = htmlTitle(root)
	}

	clean := sanitizer.SanitizeBytes(data)
	md, err := mdConverter.ConvertString(string(clean))
	if err != nil || strings.TrimSpace(md) == "" {
		// Conversion can choke on pathological markup; fall back to the
		// sanitized text with tags stripped.
		md = normalizeWhitespace(stripTags(string(clean)))
	}

	doc.Sections = markdownSections(md)
	if doc.Title == "" {
		doc.Title = sectionsTitle(doc.Sections)
	}
	return nil
}

func htmlTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		if n.FirstChild != nil {
			return strings.TrimSpace(n.FirstChild.Data)
		}
		return ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := htmlTitle(c); t != "" {
			return t
		}
	}
	return ""
}

// stripTags drops everything between angle brackets. Only used as the
// fallback when markdown conversion fails.
func stripTags(s string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
			sb.WriteByte(' ')
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
