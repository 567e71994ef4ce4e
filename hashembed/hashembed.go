// Package hashembed converts text to fixed-dimension float32 vectors with a
// deterministic multi-resolution feature-hashing scheme: no model, no server,
// bit-identical output for identical input.
//
// The scheme hashes character unigrams/bigrams/trigrams, whole words, and
// word prefixes/suffixes into 384 buckets with two independent rolling
// hashes, then L2-normalizes. It approximates semantic similarity well
// enough for coarse nearest-neighbor retrieval over a single chatbot's
// content.
//
// Usage:
//
//	emb := hashembed.New(hashembed.Config{})
//	vec, err := emb.Embed(ctx, "What is photosynthesis?")
//	// vec is []float32 of dimension 384, unit norm
package hashembed

import (
	"context"
	"log/slog"
	"math"
	"strings"
)

// Dimension is the fixed length of every vector this package produces.
const Dimension = 384

// Rolling-hash multipliers. Two independent hashes per gram, each with
// unsigned 32-bit wraparound; changing either constant changes every stored
// vector.
const (
	hashMulA = 31
	hashMulB = 37
)

// Bucket weights for the three indices derived from the two hashes.
const (
	weightPrimary   = 1.0
	weightSecondary = 0.5
	weightTertiary  = 0.25
)

// Gram role markers. A whole word must never collide in meaning with a
// character trigram of identical text, so word-level grams carry a prefix.
const (
	wordMarker   = "w:"
	prefixMarker = "p:"
	suffixMarker = "s:"
)

// Embedder converts text to vectors.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns embeddings for multiple texts, each computed
	// independently and identically to the single-text path.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the vector dimension.
	Dimension() int

	// Model returns the scheme identifier stored alongside vectors.
	Model() string
}

// Config configures the hash embedder.
type Config struct {
	// Logger for debug messages. Defaults to slog.Default().
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// HashEmbedder is the deterministic local Embedder implementation.
type HashEmbedder struct {
	logger *slog.Logger
}

// New creates a HashEmbedder.
func New(cfg Config) *HashEmbedder {
	cfg.defaults()
	return &HashEmbedder{logger: cfg.Logger}
}

// Embed computes the hash embedding of text. Never fails: empty or
// degenerate text yields the all-zero vector, which is the documented
// output, not an error.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return Vectorize(text), nil
}

// EmbedBatch computes embeddings for each text independently. Batch and
// single-item calls are interchangeable per item.
func (e *HashEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = Vectorize(t)
	}
	return out, nil
}

// Dimension returns 384.
func (e *HashEmbedder) Dimension() int { return Dimension }

// Model returns the scheme identifier.
func (e *HashEmbedder) Model() string { return "hash-multires-384" }

// Vectorize maps arbitrary text to a 384-dimension unit vector. It is the
// pure function behind HashEmbedder: case- and surrounding-whitespace-
// insensitive, deterministic, and dependency-free.
func Vectorize(text string) []float32 {
	vec := make([]float32, Dimension)

	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return vec
	}

	accumulate := func(gram string) {
		var h1, h2 uint32
		for _, r := range gram {
			h1 = h1*hashMulA + uint32(r)
			h2 = h2*hashMulB + uint32(r)
		}
		vec[h1%Dimension] += weightPrimary
		vec[h2%Dimension] += weightSecondary
		vec[(h1+h2)%Dimension] += weightTertiary
	}

	// Character grams at three resolutions.
	runes := []rune(normalized)
	for i, r := range runes {
		accumulate(string(r))
		if i+2 <= len(runes) {
			accumulate(string(runes[i : i+2]))
		}
		if i+3 <= len(runes) {
			accumulate(string(runes[i : i+3]))
		}
	}

	// Word grams, plus prefix/suffix grams for longer words.
	for _, word := range strings.Fields(normalized) {
		accumulate(wordMarker + word)
		if wr := []rune(word); len(wr) > 3 {
			accumulate(prefixMarker + string(wr[:3]))
			accumulate(suffixMarker + string(wr[len(wr)-3:]))
		}
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum > 0 {
		norm := float32(math.Sqrt(sum))
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}
