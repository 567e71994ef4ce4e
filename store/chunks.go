package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chatlas/chatlas/dbopen"
	"github.com/chatlas/chatlas/hashembed"
)

// Chunk is one embeddable unit of a chatbot's content.
type Chunk struct {
	ID         string
	ChatbotID  string
	SourceURL  string // crawled page URL or uploaded document path
	ChunkIndex int
	Text       string
	Embedding  []float32 // nil until synced
	Norm       float64
	CreatedAt  int64
}

// ErrChunkNotFound is returned when an embedding sync targets a chunk ID
// that does not exist.
var ErrChunkNotFound = errors.New("chunk not found")

// InsertChunks stores a batch of chunks in a single transaction.
func (s *Store) InsertChunks(ctx context.Context, chunks []*Chunk) error {
	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO chunks (id, chatbot_id, source_url, chunk_index, text, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare: %w", err)
		}
		defer stmt.Close()

		now := time.Now().Unix()
		for _, c := range chunks {
			createdAt := c.CreatedAt
			if createdAt == 0 {
				createdAt = now
			}
			if _, err := stmt.ExecContext(ctx,
				c.ID, c.ChatbotID, c.SourceURL, c.ChunkIndex, c.Text, createdAt); err != nil {
				return fmt.Errorf("insert chunk %d: %w", c.ChunkIndex, err)
			}
		}
		return nil
	})
}

// DeleteChunksBySource removes all chunks derived from one source URL or
// document path. Re-indexing a source deletes before inserting so stale
// chunks never linger.
func (s *Store) DeleteChunksBySource(ctx context.Context, chatbotID, sourceURL string) error {
	_, err := s.DB.ExecContext(ctx,
		`DELETE FROM chunks WHERE chatbot_id = ? AND source_url = ?`, chatbotID, sourceURL)
	return err
}

// SetEmbedding writes a computed vector onto one chunk, fully replacing any
// prior vector. Failure propagates: the single-item sync contract is strict.
func (s *Store) SetEmbedding(ctx context.Context, chunkID string, vec []float32) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE chunks SET embedding = ?, dimension = ?, norm = ? WHERE id = ?`,
		hashembed.SerializeVector(vec), len(vec), hashembed.Norm(vec), chunkID)
	if err != nil {
		return fmt.Errorf("set embedding %s: %w", chunkID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set embedding %s: %w", chunkID, err)
	}
	if n == 0 {
		return fmt.Errorf("set embedding %s: %w", chunkID, ErrChunkNotFound)
	}
	return nil
}

// SetEmbeddingBatch writes vectors onto chunks pairwise. A failure updating
// one chunk is logged and does not abort the remaining updates; the number
// of chunks actually updated is returned. Partial success is expected.
func (s *Store) SetEmbeddingBatch(ctx context.Context, chunkIDs []string, vecs [][]float32) int {
	updated := 0
	for i, id := range chunkIDs {
		if i >= len(vecs) {
			break
		}
		if err := s.SetEmbedding(ctx, id, vecs[i]); err != nil {
			s.logger.Warn("embedding sync failed", "chunk_id", id, "error", err)
			continue
		}
		updated++
	}
	return updated
}

// GetChunk returns one chunk with its embedding, or nil if absent.
func (s *Store) GetChunk(ctx context.Context, chunkID string) (*Chunk, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT id, chatbot_id, source_url, chunk_index, text, embedding, norm, created_at
		FROM chunks WHERE id = ?`, chunkID)
	c, err := scanChunk(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// EmbeddedChunks returns all of a chatbot's chunks that carry a vector,
// ordered by source and position. This feeds the linear-scan retrieval.
func (s *Store) EmbeddedChunks(ctx context.Context, chatbotID string) ([]*Chunk, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, chatbot_id, source_url, chunk_index, text, embedding, norm, created_at
		FROM chunks
		WHERE chatbot_id = ? AND embedding IS NOT NULL
		ORDER BY source_url, chunk_index`, chatbotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// UnembeddedChunks returns up to limit chunks still awaiting a vector.
func (s *Store) UnembeddedChunks(ctx context.Context, chatbotID string, limit int) ([]*Chunk, error) {
	if limit <= 0 {
		limit = 32
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, chatbot_id, source_url, chunk_index, text, embedding, norm, created_at
		FROM chunks
		WHERE chatbot_id = ? AND embedding IS NULL
		ORDER BY created_at, chunk_index LIMIT ?`, chatbotID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChunk(row rowScanner) (*Chunk, error) {
	var c Chunk
	var blob []byte
	if err := row.Scan(&c.ID, &c.ChatbotID, &c.SourceURL, &c.ChunkIndex,
		&c.Text, &blob, &c.Norm, &c.CreatedAt); err != nil {
		return nil, err
	}
	if blob != nil {
		c.Embedding = hashembed.DeserializeVector(blob)
	}
	return &c, nil
}
