// Package chunk splits text into embeddable units.
//
// Crawled pages and parsed documents pass through here before embedding:
// word-window chunks with overlap keep neighboring context available to
// retrieval without exceeding what the hash embedder can usefully absorb.
package chunk

import (
	"strings"
	"unicode"
)

// Defaults for word-window chunking.
const (
	DefaultSize    = 200
	DefaultOverlap = 40
)

// Strategy selects how text is divided into chunks.
type Strategy string

const (
	// StrategyWords is fixed word windows with overlap.
	StrategyWords Strategy = "words"
	// StrategySentences packs whole sentences up to the size limit,
	// trading the overlap of word windows for clean boundaries.
	StrategySentences Strategy = "sentences"
)

// ByStrategy dispatches to the splitter the strategy names. Empty or
// unknown strategies fall back to word windows.
func ByStrategy(text string, strategy Strategy, size, overlap int) []string {
	if strategy == StrategySentences {
		return SplitSentences(text, size)
	}
	return Split(text, size, overlap)
}

// Split divides text into word-window chunks of approximately size words,
// with overlap words shared between consecutive chunks. Whitespace is
// normalized first. Empty input yields no chunks.
func Split(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}

	words := strings.Fields(Normalize(text))
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	stride := size - overlap

	for i := 0; i < len(words); i += stride {
		end := min(i+size, len(words))
		chunks = append(chunks, strings.Join(words[i:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

// SplitSentences divides text into chunks of at most maxWords words,
// breaking on sentence boundaries where possible. A single sentence longer
// than maxWords becomes its own oversized chunk.
func SplitSentences(text string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = DefaultSize
	}

	sentences := sentences(Normalize(text))
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder
	currentWords := 0

	for _, s := range sentences {
		n := len(strings.Fields(s))

		if currentWords == 0 && n > maxWords {
			chunks = append(chunks, s)
			continue
		}
		if currentWords+n > maxWords && currentWords > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
			currentWords = 0
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(s)
		currentWords += n
	}

	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	return chunks
}

// Normalize collapses runs of whitespace to single spaces and trims.
func Normalize(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace {
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

func sentences(text string) []string {
	var out []string
	var current strings.Builder
	runes := []rune(text)

	for i, r := range runes {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				if s := strings.TrimSpace(current.String()); s != "" {
					out = append(out, s)
				}
				current.Reset()
			}
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		out = append(out, s)
	}
	return out
}
