package docpipe

import (
	"os"
	"strings"
	"unicode"
)

// parsePlainText loads a .txt file as a single normalized paragraph.
func parsePlainText(path string, doc *Document) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	text := normalizeWhitespace(string(data))
	if text == "" {
		return nil
	}
	doc.Title = firstLine(text)
	doc.Sections = []Section{{Text: text, Type: "paragraph"}}
	return nil
}

// parseMarkdown loads a .md file and sections it on ATX headings and
// blank lines. The first heading becomes the document title.
func parseMarkdown(path string, doc *Document) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	doc.Sections = markdownSections(string(data))
	doc.Title = sectionsTitle(doc.Sections)
	return nil
}

// markdownSections splits markdown text into heading and paragraph
// sections. Blank lines separate paragraphs; consecutive non-blank lines
// merge into one.
func markdownSections(md string) []Section {
	var sections []Section
	var current strings.Builder

	flush := func() {
		if text := strings.TrimSpace(current.String()); text != "" {
			sections = append(sections, Section{Text: text, Type: "paragraph"})
		}
		current.Reset()
	}

	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "#") {
			flush()
			level := 0
			for _, ch := range trimmed {
				if ch != '#' {
					break
				}
				level++
			}
			if level > 6 {
				level = 6
			}
			heading := strings.TrimSpace(strings.Trim(trimmed, "# "))
			if heading != "" {
				sections = append(sections, Section{
					Title: heading,
					Level: level,
					Text:  heading,
					Type:  "heading",
				})
			}
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}

		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(trimmed)
	}
	flush()

	return sections
}

// sectionsTitle picks a document title: the first heading, else the
// first line of the first section.
func sectionsTitle(sections []Section) string {
	for _, s := range sections {
		if s.Type == "heading" {
			return s.Title
		}
	}
	if len(sections) > 0 {
		return firstLine(sections[0].Text)
	}
	return ""
}

func normalizeWhitespace(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		} else {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	text = strings.TrimSpace(text)
	if runes := []rune(text); len(runes) > 200 {
		text = string(runes[:200])
	}
	return text
}
