// Package store is the data access layer for crawled pages and content
// chunks. It receives an already-opened *sql.DB (see dbopen) and owns the
// schema for both tables.
package store

import (
	"database/sql"
	"log/slog"
)

// Schema creates the tables the store operates on. Idempotent; pass to
// dbopen.WithSchema or execute directly.
const Schema = `
CREATE TABLE IF NOT EXISTS crawled_pages (
	chatbot_id TEXT NOT NULL,
	url        TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL,
	crawled_at INTEGER NOT NULL,
	PRIMARY KEY (chatbot_id, url)
);

CREATE TABLE IF NOT EXISTS chunks (
	id          TEXT PRIMARY KEY,
	chatbot_id  TEXT NOT NULL,
	source_url  TEXT NOT NULL DEFAULT '',
	chunk_index INTEGER NOT NULL,
	text        TEXT NOT NULL,
	embedding   BLOB,
	dimension   INTEGER NOT NULL DEFAULT 0,
	norm        REAL NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chunks_chatbot ON chunks(chatbot_id);
CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(chatbot_id, source_url);
`

// Store wraps the chatbot content database.
type Store struct {
	DB     *sql.DB
	logger *slog.Logger
}

// NewStore creates a Store from an already-opened database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, logger: slog.Default()}
}

// WithLogger returns the store logging through logger.
func (s *Store) WithLogger(logger *slog.Logger) *Store {
	s.logger = logger
	return s
}

// InitSchema executes the table schema. Safe to call repeatedly.
func (s *Store) InitSchema() error {
	_, err := s.DB.Exec(Schema)
	return err
}
