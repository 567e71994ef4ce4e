package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// handleCrawl runs a breadth-first crawl for one chatbot. Structural
// problems (missing fields, unusable seed URL) reject with 400 before any
// fetching begins; per-page failures land in the results list, never in
// the status code. Saved pages are chunked and embedded as a side effect.
func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChatbotID string `json:"chatbot_id"`
		URL       string `json:"url"`
		MaxPages  int    `json:"max_pages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ChatbotID == "" {
		writeError(w, http.StatusBadRequest, "chatbot_id is required")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	seed, err := url.Parse(req.URL)
	if err != nil || !seed.IsAbs() || (seed.Scheme != "http" && seed.Scheme != "https") {
		writeError(w, http.StatusBadRequest, "url must be an absolute http(s) URL")
		return
	}

	log := requestLogger(r.Context())
	report := s.crawler.Crawl(r.Context(), req.ChatbotID, req.URL, req.MaxPages)

	// Index what the crawl saved. Indexing problems are logged, not
	// surfaced: the crawl itself succeeded.
	for _, res := range report.Results {
		if !res.Success {
			continue
		}
		page, err := s.store.GetPage(r.Context(), req.ChatbotID, res.URL)
		if err != nil || page == nil {
			log.Warn("indexing: page not found after crawl", "url", res.URL, "error", err)
			continue
		}
		if _, _, err := s.indexText(r.Context(), req.ChatbotID, page.URL, page.Content); err != nil {
			log.Warn("indexing crawled page failed", "url", res.URL, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, report)
}

// handleEmbed serves both embedding forms: {text, chunkId?} and
// {texts, chunkIds?}. Persistence failure is fatal for the single form
// and logged per-item for the batch form.
func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     *string  `json:"text"`
		ChunkID  string   `json:"chunkId"`
		Texts    []string `json:"texts"`
		ChunkIDs []string `json:"chunkIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	switch {
	case req.Texts != nil:
		if req.ChunkIDs != nil && len(req.ChunkIDs) != len(req.Texts) {
			writeError(w, http.StatusBadRequest, "chunkIds must match texts in length")
			return
		}
		vecs, err := s.embedder.EmbedBatch(r.Context(), req.Texts)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "embedding failed: "+err.Error())
			return
		}
		if req.ChunkIDs != nil {
			// Partial persistence is fine: computed vectors are still
			// returned, individual failures were logged by the store.
			s.store.SetEmbeddingBatch(r.Context(), req.ChunkIDs, vecs)
		}
		writeJSON(w, http.StatusOK, map[string]any{"embeddings": vecs})

	case req.Text != nil:
		vec, err := s.embedder.Embed(r.Context(), *req.Text)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "embedding failed: "+err.Error())
			return
		}
		if req.ChunkID != "" {
			if err := s.store.SetEmbedding(r.Context(), req.ChunkID, vec); err != nil {
				writeError(w, http.StatusInternalServerError, "persist embedding: "+err.Error())
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"embedding": vec})

	default:
		writeError(w, http.StatusBadRequest, "text or texts is required")
	}
}

// handleDocuments ingests a document file: parse, chunk, embed, store.
func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChatbotID string `json:"chatbot_id"`
		Path      string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ChatbotID == "" {
		writeError(w, http.StatusBadRequest, "chatbot_id is required")
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	doc, err := s.docs.Parse(r.Context(), req.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stored, embedded, err := s.indexText(r.Context(), req.ChatbotID, doc.Path, doc.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"title":           doc.Title,
		"format":          doc.Format,
		"chunks":          stored,
		"chunks_embedded": embedded,
	})
}

// handleSearch retrieves the most similar chunks for a query.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChatbotID string `json:"chatbot_id"`
		Query     string `json:"query"`
		TopK      int    `json:"top_k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ChatbotID == "" {
		writeError(w, http.StatusBadRequest, "chatbot_id is required")
		return
	}

	results, err := s.searcher.Search(r.Context(), req.ChatbotID, req.Query, req.TopK)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}

// handleListPages lists a chatbot's crawled pages.
func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	chatbotID := chi.URLParam(r, "chatbotID")

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	pages, err := s.store.ListPages(r.Context(), chatbotID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := s.store.CountPages(r.Context(), chatbotID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type pageInfo struct {
		URL       string `json:"url"`
		Title     string `json:"title"`
		CrawledAt string `json:"crawled_at"`
	}
	out := make([]pageInfo, 0, len(pages))
	for _, p := range pages {
		out = append(out, pageInfo{
			URL:       p.URL,
			Title:     p.Title,
			CrawledAt: p.CrawledAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pages": out,
		"total": total,
	})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return def
	}
	return v
}
