// Package search retrieves stored chunks by vector similarity.
//
// Queries are embedded with the same hash embedder used at ingest time,
// then scored against every embedded chunk of one chatbot with cosine
// similarity. The scan is deliberately linear: the corpus per chatbot is
// small (pages are capped at crawl time) and an index would buy nothing.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/chatlas/chatlas/hashembed"
	"github.com/chatlas/chatlas/store"
)

// DefaultTopK is the number of results returned when the caller does not
// specify a count.
const DefaultTopK = 5

// Result is one scored chunk.
type Result struct {
	ChunkID    string  `json:"chunk_id"`
	SourceURL  string  `json:"source_url"`
	ChunkIndex int     `json:"chunk_index"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// ChunkSource lists the embedded chunks of one chatbot.
type ChunkSource interface {
	EmbeddedChunks(ctx context.Context, chatbotID string) ([]*store.Chunk, error)
}

// Config configures a Searcher.
type Config struct {
	TopK   int
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Searcher scores queries against stored chunk vectors.
type Searcher struct {
	chunks   ChunkSource
	embedder hashembed.Embedder
	cfg      Config
	logger   *slog.Logger
}

// New creates a Searcher.
func New(chunks ChunkSource, embedder hashembed.Embedder, cfg Config) *Searcher {
	cfg.defaults()
	return &Searcher{
		chunks:   chunks,
		embedder: embedder,
		cfg:      cfg,
		logger:   cfg.Logger,
	}
}

// Search embeds query and returns the topK most similar chunks for the
// chatbot, highest score first. topK <= 0 falls back to the configured
// default. A degenerate query (whitespace only, zero vector) returns an
// empty result set rather than arbitrary matches.
func (s *Searcher) Search(ctx context.Context, chatbotID, query string, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = s.cfg.TopK
	}
	if strings.TrimSpace(query) == "" {
		return []Result{}, nil
	}

	qvec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if hashembed.Norm(qvec) == 0 {
		return []Result{}, nil
	}

	chunks, err := s.chunks.EmbeddedChunks(ctx, chatbotID)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}

	results := make([]Result, 0, len(chunks))
	for _, c := range chunks {
		if len(c.Embedding) != len(qvec) {
			s.logger.Warn("skipping chunk with mismatched dimension",
				"chunk_id", c.ID, "dimension", len(c.Embedding))
			continue
		}
		// Query and stored vectors are unit length, so the dot product
		// already is the cosine similarity.
		results = append(results, Result{
			ChunkID:    c.ID,
			SourceURL:  c.SourceURL,
			ChunkIndex: c.ChunkIndex,
			Text:       c.Text,
			Score:      hashembed.Dot(qvec, c.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}
