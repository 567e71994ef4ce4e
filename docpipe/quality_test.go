package docpipe

import (
	"strings"
	"testing"
)

func TestPrintableRatio(t *testing.T) {
	if got := printableRatio("clean readable text"); got != 1.0 {
		t.Errorf("clean text ratio = %f, want 1.0", got)
	}
	if got := printableRatio(""); got != 1.0 {
		t.Errorf("empty text ratio = %f, want 1.0", got)
	}

	// Private Use Area runes are the signature of broken font maps.
	garbled := strings.Repeat("", 9) + "a"
	if got := printableRatio(garbled); got > 0.2 {
		t.Errorf("garbled ratio = %f, want <= 0.2", got)
	}

	// Whitespace counts as printable.
	if got := printableRatio("a\tb\nc"); got != 1.0 {
		t.Errorf("whitespace ratio = %f, want 1.0", got)
	}
}

func TestWordlikeRatio(t *testing.T) {
	if got := wordlikeRatio("these are normal words"); got != 1.0 {
		t.Errorf("normal words ratio = %f, want 1.0", got)
	}
	if got := wordlikeRatio(""); got != 0 {
		t.Errorf("empty ratio = %f, want 0", got)
	}

	// Single runes and over-long runs are not word-like.
	junk := "x y z " + strings.Repeat("q", 40)
	if got := wordlikeRatio(junk); got != 0 {
		t.Errorf("junk ratio = %f, want 0", got)
	}
}

func TestQualityAcceptable(t *testing.T) {
	good := &Quality{PrintableRatio: 0.99, WordlikeRatio: 0.9}
	if !good.Acceptable() {
		t.Error("clean extraction should be acceptable")
	}

	garbled := &Quality{PrintableRatio: 0.5, WordlikeRatio: 0.9}
	if garbled.Acceptable() {
		t.Error("low printable ratio should be rejected")
	}

	fragmented := &Quality{PrintableRatio: 0.99, WordlikeRatio: 0.2}
	if fragmented.Acceptable() {
		t.Error("low wordlike ratio should be rejected")
	}
}

func TestQualityNeedsOCR(t *testing.T) {
	scanned := &Quality{HasImages: true, CharsPerPage: 3}
	if !scanned.NeedsOCR() {
		t.Error("image-heavy PDF with no text should need OCR")
	}

	textual := &Quality{HasImages: true, CharsPerPage: 800}
	if textual.NeedsOCR() {
		t.Error("PDF with plenty of text does not need OCR")
	}

	imageless := &Quality{HasImages: false, CharsPerPage: 3}
	if imageless.NeedsOCR() {
		t.Error("PDF without images cannot be OCRed into more text")
	}
}
