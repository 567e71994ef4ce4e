// Package api exposes the crawl, embedding, document ingestion, and search
// operations over HTTP. Handlers validate structural input themselves and
// reject it before any work begins; per-item failures inside a crawl or a
// batch never surface as HTTP errors.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chatlas/chatlas/chunk"
	"github.com/chatlas/chatlas/crawl"
	"github.com/chatlas/chatlas/docpipe"
	"github.com/chatlas/chatlas/hashembed"
	"github.com/chatlas/chatlas/idgen"
	"github.com/chatlas/chatlas/search"
	"github.com/chatlas/chatlas/store"
)

// Config configures a Server.
type Config struct {
	ChunkSize     int
	ChunkOverlap  int
	ChunkStrategy chunk.Strategy
	MaxBodyBytes  int64
	Logger        *slog.Logger
}

func (c *Config) defaults() {
	if c.ChunkSize <= 0 {
		c.ChunkSize = 200
	}
	if c.ChunkStrategy == "" {
		c.ChunkStrategy = chunk.StrategyWords
	}
	if c.ChunkOverlap <= 0 {
		c.ChunkOverlap = 40
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Server wires the service components behind a chi router.
type Server struct {
	store    *store.Store
	crawler  *crawl.Crawler
	embedder hashembed.Embedder
	searcher *search.Searcher
	docs     *docpipe.Pipeline
	cfg      Config
	logger   *slog.Logger
	newID    idgen.Generator
}

// New creates a Server.
func New(st *store.Store, crawler *crawl.Crawler, embedder hashembed.Embedder,
	searcher *search.Searcher, docs *docpipe.Pipeline, cfg Config) *Server {
	cfg.defaults()
	return &Server{
		store:    st,
		crawler:  crawler,
		embedder: embedder,
		searcher: searcher,
		docs:     docs,
		cfg:      cfg,
		logger:   cfg.Logger,
		newID:    idgen.Default,
	}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(SecurityHeaders)
	r.Use(MaxBody(s.cfg.MaxBodyBytes))
	r.Use(RequestLogger(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/crawl", s.handleCrawl)
		r.Post("/embed", s.handleEmbed)
		r.Post("/documents", s.handleDocuments)
		r.Post("/search", s.handleSearch)
		r.Get("/chatbots/{chatbotID}/pages", s.handleListPages)
	})

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
