package docpipe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDetect(t *testing.T) {
	cases := []struct {
		path string
		want Format
	}{
		{"report.pdf", FormatPDF},
		{"page.html", FormatHTML},
		{"page.htm", FormatHTML},
		{"notes.md", FormatMD},
		{"notes.markdown", FormatMD},
		{"readme.txt", FormatTXT},
		{"README.TXT", FormatTXT},
	}
	for _, c := range cases {
		got, err := Detect(c.path)
		if err != nil {
			t.Errorf("Detect(%q): %v", c.path, err)
			continue
		}
		if got != c.want {
			t.Errorf("Detect(%q) = %q, want %q", c.path, got, c.want)
		}
	}

	if _, err := Detect("archive.zip"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Detect(zip) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestParse_PlainText(t *testing.T) {
	// WHAT: a .txt file parses into one paragraph with the first line as title.
	content := "Shipping policy\nOrders ship within two business days, tracked delivery included."
	path := writeFile(t, "policy.txt", content)

	pipe := New(Config{})
	doc, err := pipe.Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Format != FormatTXT {
		t.Errorf("format = %q", doc.Format)
	}
	if doc.Title != "Shipping policy" {
		t.Errorf("title = %q", doc.Title)
	}
	if len(doc.Sections) != 1 || doc.Sections[0].Type != "paragraph" {
		t.Fatalf("sections = %+v", doc.Sections)
	}
	if !strings.Contains(doc.Text, "two business days") {
		t.Errorf("text = %q", doc.Text)
	}
}

func TestParse_Markdown(t *testing.T) {
	// WHAT: ATX headings become heading sections; the first one is the title.
	content := `# Returns

Items can be returned within 30 days of delivery.

## Exceptions

Final-sale items and gift cards cannot be returned.`
	path := writeFile(t, "returns.md", content)

	pipe := New(Config{})
	doc, err := pipe.Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Title != "Returns" {
		t.Errorf("title = %q, want Returns", doc.Title)
	}

	var headings, paragraphs int
	for _, s := range doc.Sections {
		switch s.Type {
		case "heading":
			headings++
		case "paragraph":
			paragraphs++
		}
	}
	if headings != 2 || paragraphs != 2 {
		t.Errorf("headings = %d paragraphs = %d, want 2 and 2", headings, paragraphs)
	}
	if doc.Sections[1].Level != 0 || doc.Sections[2].Level != 2 {
		t.Errorf("levels = %d, %d", doc.Sections[1].Level, doc.Sections[2].Level)
	}
}

func TestParse_HTML(t *testing.T) {
	// WHAT: scripts are sanitized away, the <title> becomes the document
	// title, and body content survives the markdown conversion.
	content := `<html><head><title>Support Center</title>
<script>window.track("evil")</script></head>
<body><h1>Contact us</h1><p>Email support@example.com for help with any order questions.</p></body></html>`
	path := writeFile(t, "support.html", content)

	pipe := New(Config{})
	doc, err := pipe.Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Title != "Support Center" {
		t.Errorf("title = %q", doc.Title)
	}
	if !strings.Contains(doc.Text, "order questions") {
		t.Errorf("text = %q, want body content", doc.Text)
	}
	if strings.Contains(doc.Text, "window.track") {
		t.Errorf("script content leaked into text: %q", doc.Text)
	}
}

func TestParse_TooShort(t *testing.T) {
	// WHAT: extracted text under MinTextLength is rejected with ErrTooShort.
	path := writeFile(t, "stub.txt", "tiny")

	pipe := New(Config{})
	_, err := pipe.Parse(context.Background(), path)
	if !errors.Is(err, ErrTooShort) {
		t.Fatalf("err = %v, want ErrTooShort", err)
	}
}

func TestParse_MinLengthConfigurable(t *testing.T) {
	path := writeFile(t, "stub.txt", "short but acceptable")

	pipe := New(Config{MinTextLength: 5})
	if _, err := pipe.Parse(context.Background(), path); err != nil {
		t.Fatalf("Parse: %v", err)
	}
}

func TestParse_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, "data.csv", strings.Repeat("a,b,c\n", 20))

	pipe := New(Config{})
	if _, err := pipe.Parse(context.Background(), path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestParse_FileTooLarge(t *testing.T) {
	path := writeFile(t, "big.txt", strings.Repeat("x", 2048))

	pipe := New(Config{MaxFileSize: 1024})
	_, err := pipe.Parse(context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), "too large") {
		t.Fatalf("err = %v, want size error", err)
	}
}

func TestParse_MissingFile(t *testing.T) {
	pipe := New(Config{})
	if _, err := pipe.Parse(context.Background(), "/nonexistent/file.txt"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParse_CanceledContext(t *testing.T) {
	path := writeFile(t, "doc.txt", strings.Repeat("word ", 30))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pipe := New(Config{})
	if _, err := pipe.Parse(ctx, path); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
