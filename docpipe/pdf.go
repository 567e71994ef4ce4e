package docpipe

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// parsePDF extracts text page by page using pdfcpu and fills in quality
// metrics. One Section per non-empty page.
func parsePDF(path string, doc *Document) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	pdf, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return fmt.Errorf("pdfcpu read: %w", err)
	}

	var full strings.Builder
	totalChars := 0

	for pageNr := 1; pageNr <= pdf.PageCount; pageNr++ {
		pageText := pageContent(pdf, pageNr)
		if pageText == "" {
			continue
		}
		totalChars += utf8.RuneCountInString(pageText)

		if doc.Title == "" {
			doc.Title = firstLine(pageText)
		}

		doc.Sections = append(doc.Sections, Section{
			Text: pageText,
			Type: "page",
			Page: pageNr,
		})
		if full.Len() > 0 {
			full.WriteByte('\n')
		}
		full.WriteString(pageText)
	}

	if len(doc.Sections) == 0 {
		return fmt.Errorf("no text content in PDF")
	}

	text := full.String()
	var perPage float64
	if pdf.PageCount > 0 {
		perPage = float64(totalChars) / float64(pdf.PageCount)
	}
	doc.Quality = &Quality{
		PageCount:      pdf.PageCount,
		CharsPerPage:   perPage,
		PrintableRatio: printableRatio(text),
		WordlikeRatio:  wordlikeRatio(text),
		HasImages:      hasImageObjects(pdf),
	}
	return nil
}

func pageContent(pdf *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(pdf, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return decodeContentStream(data)
}

// hasImageObjects reports whether the PDF carries image XObjects.
func hasImageObjects(pdf *model.Context) bool {
	if pdf.Optimize != nil {
		for pageNr := 1; pageNr <= pdf.PageCount; pageNr++ {
			if len(pdfcpu.ImageObjNrs(pdf, pageNr)) > 0 {
				return true
			}
		}
	}
	for _, entry := range pdf.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, found := sd.Find("Subtype"); found {
			if name, isName := subtype.(types.Name); isName && name == "Image" {
				return true
			}
		}
	}
	return false
}

// literalRe matches PDF string literals: (text here)
var literalRe = regexp.MustCompile(`\(([^)]*)\)`)

// decodeContentStream walks a page content stream and collects the text
// drawn by Tj, TJ, and ' operators. Positioning operators (Td, TD, T*)
// become whitespace so words on separate lines stay separated.
func decodeContentStream(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range literalRe.FindAllSubmatch(line, -1) {
				sb.WriteString(unescapeLiteral(m[1]))
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			for _, m := range literalRe.FindAllSubmatch(line, -1) {
				sb.WriteByte('\n')
				sb.WriteString(unescapeLiteral(m[1]))
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return squashPDFText(sb.String())
}

// unescapeLiteral resolves PDF string escapes, including octal codes.
func unescapeLiteral(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for d := 0; d < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; d++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

func squashPDFText(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		} else if unicode.IsPrint(r) {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
