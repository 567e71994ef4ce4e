package docpipe

import (
	"strings"
	"unicode"
)

// Quality thresholds for accepting a PDF extraction.
const (
	minPrintableRatio = 0.85
	minWordlikeRatio  = 0.5
)

// Quality captures metrics about a PDF text extraction. Scanned or
// font-mangled PDFs produce low ratios and get rejected instead of
// polluting the embedding store with garbage.
type Quality struct {
	PageCount      int     `json:"page_count"`
	CharsPerPage   float64 `json:"chars_per_page"`
	PrintableRatio float64 `json:"printable_ratio"`
	WordlikeRatio  float64 `json:"wordlike_ratio"`
	HasImages      bool    `json:"has_images"`
}

// Acceptable reports whether the extraction is clean enough to index.
func (q *Quality) Acceptable() bool {
	return q.PrintableRatio >= minPrintableRatio && q.WordlikeRatio >= minWordlikeRatio
}

// NeedsOCR reports whether the PDF likely holds its text as images.
func (q *Quality) NeedsOCR() bool {
	return q.HasImages && q.CharsPerPage < 50
}

// printableRatio returns the fraction of runes that are printable text.
// Private Use Area glyphs, U+FFFD, and non-whitespace control characters
// count against it; they are the signature of broken font encodings.
func printableRatio(text string) float64 {
	if text == "" {
		return 1.0
	}
	total, printable := 0, 0
	for _, r := range text {
		total++
		if isGarbageRune(r) {
			continue
		}
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	return float64(printable) / float64(total)
}

func isGarbageRune(r rune) bool {
	if r >= 0xE000 && r <= 0xF8FF {
		return true
	}
	if r == 0xFFFD {
		return true
	}
	if r < 0x0020 && r != '\n' && r != '\r' && r != '\t' {
		return true
	}
	return false
}

// wordlikeRatio returns the fraction of whitespace-separated tokens whose
// length falls in the range of natural-language words (2 to 15 runes).
func wordlikeRatio(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	wordlike := 0
	for _, f := range fields {
		if n := len([]rune(f)); n >= 2 && n <= 15 {
			wordlike++
		}
	}
	return float64(wordlike) / float64(len(fields))
}
