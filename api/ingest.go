package api

import (
	"context"
	"fmt"

	"github.com/chatlas/chatlas/chunk"
	"github.com/chatlas/chatlas/store"
)

// indexText chunks one source's text, stores the chunks, and syncs their
// embeddings. Existing chunks for the source are replaced, so re-crawling
// or re-uploading never accumulates stale rows. Returns the number of
// chunks stored and the number successfully embedded.
func (s *Server) indexText(ctx context.Context, chatbotID, sourceURL, text string) (int, int, error) {
	pieces := chunk.ByStrategy(text, s.cfg.ChunkStrategy, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if len(pieces) == 0 {
		return 0, 0, nil
	}

	if err := s.store.DeleteChunksBySource(ctx, chatbotID, sourceURL); err != nil {
		return 0, 0, fmt.Errorf("clear chunks: %w", err)
	}

	chunks := make([]*store.Chunk, len(pieces))
	ids := make([]string, len(pieces))
	for i, text := range pieces {
		id := s.newID()
		ids[i] = id
		chunks[i] = &store.Chunk{
			ID:         id,
			ChatbotID:  chatbotID,
			SourceURL:  sourceURL,
			ChunkIndex: i,
			Text:       text,
		}
	}
	if err := s.store.InsertChunks(ctx, chunks); err != nil {
		return 0, 0, fmt.Errorf("insert chunks: %w", err)
	}

	vecs, err := s.embedder.EmbedBatch(ctx, pieces)
	if err != nil {
		return len(pieces), 0, fmt.Errorf("embed chunks: %w", err)
	}
	embedded := s.store.SetEmbeddingBatch(ctx, ids, vecs)
	return len(pieces), embedded, nil
}
