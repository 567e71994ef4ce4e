// Package docpipe parses uploaded document files into text ready for
// chunking and embedding. It is the upload-side counterpart of the web
// crawler: where the crawler pulls pages over HTTP, docpipe reads files
// from disk.
//
// Supported formats:
//   - .pdf   — pdfcpu cross-reference parsing + content stream decoding
//   - .html  — sanitized and converted to markdown, then sectioned
//   - .md    — ATX heading detection, paragraph splitting
//   - .txt   — whitespace normalization
//
// PDF extractions carry quality metrics; extractions below the printable
// or wordlike thresholds are rejected so scanned documents do not end up
// as garbage vectors in the store.
package docpipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Parse failure modes callers branch on.
var (
	ErrUnsupportedFormat = errors.New("docpipe: unsupported format")
	ErrTooShort          = errors.New("docpipe: content below minimum length")
	ErrLowQuality        = errors.New("docpipe: extraction quality below threshold")
)

// Config configures the document pipeline.
type Config struct {
	// MaxFileSize is the largest file the pipeline will read (default 50 MB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// MinTextLength is the minimum extracted text length in runes
	// (default 50, matching the crawler's thin-page threshold).
	MinTextLength int `json:"min_text_length" yaml:"min_text_length"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 50 * 1024 * 1024
	}
	if c.MinTextLength <= 0 {
		c.MinTextLength = 50
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Pipeline parses document files into Documents.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Pipeline.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{cfg: cfg, logger: cfg.Logger}
}

// Detect maps a file path to its document format by extension.
func Detect(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".md", ".markdown":
		return FormatMD, nil
	case ".txt", ".text":
		return FormatTXT, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Parse reads and extracts a document, applying the length and quality
// gates. Rejected documents return ErrTooShort or ErrLowQuality.
func (p *Pipeline) Parse(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > p.cfg.MaxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), p.cfg.MaxFileSize)
	}

	format, err := Detect(path)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("parsing document", "path", path, "format", format)

	doc := &Document{Path: path, Format: format}
	switch format {
	case FormatPDF:
		err = parsePDF(path, doc)
	case FormatHTML:
		err = parseHTML(path, doc)
	case FormatMD:
		err = parseMarkdown(path, doc)
	case FormatTXT:
		err = parsePlainText(path, doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s (%s): %w", path, format, err)
	}

	doc.Text = joinSections(doc.Sections)

	if utf8.RuneCountInString(doc.Text) < p.cfg.MinTextLength {
		return nil, fmt.Errorf("%w: %s", ErrTooShort, path)
	}
	if doc.Quality != nil && !doc.Quality.Acceptable() {
		p.logger.Warn("rejecting low-quality extraction",
			"path", path,
			"printable_ratio", doc.Quality.PrintableRatio,
			"wordlike_ratio", doc.Quality.WordlikeRatio,
			"needs_ocr", doc.Quality.NeedsOCR())
		return nil, fmt.Errorf("%w: %s", ErrLowQuality, path)
	}

	return doc, nil
}

// SupportedExtensions returns the file extensions Parse accepts.
func SupportedExtensions() []string {
	return []string{".pdf", ".html", ".htm", ".md", ".markdown", ".txt", ".text"}
}

func joinSections(sections []Section) string {
	var sb strings.Builder
	for i, s := range sections {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if s.Title != "" && s.Title != s.Text {
			sb.WriteString(s.Title)
			sb.WriteByte('\n')
		}
		sb.WriteString(s.Text)
	}
	return sb.String()
}
