package docpipe

// Format identifies a supported document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
	FormatMD   Format = "md"
	FormatTXT  Format = "txt"
)

// Section is one structural unit of a parsed document: a heading, a
// paragraph, or a page (for PDFs).
type Section struct {
	Title string `json:"title,omitempty"`
	Level int    `json:"level,omitempty"` // heading level 1-6, 0 for body
	Text  string `json:"text"`
	Type  string `json:"type"` // heading, paragraph, page
	Page  int    `json:"page,omitempty"`
}

// Document is the result of parsing a file. Text is the concatenated
// section content, ready for chunking and embedding.
type Document struct {
	Path     string    `json:"path"`
	Format   Format    `json:"format"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
	Text     string    `json:"text"`
	Quality  *Quality  `json:"quality,omitempty"` // PDF extractions only
}
