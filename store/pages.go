package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chatlas/chatlas/crawl"
)

// UpsertPage inserts or overwrites the page keyed on (chatbot_id, url).
// Last write wins; concurrent crawls of overlapping URLs race by design.
func (s *Store) UpsertPage(ctx context.Context, p *crawl.Page) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO crawled_pages (chatbot_id, url, title, content, crawled_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chatbot_id, url) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			crawled_at = excluded.crawled_at`,
		p.ChatbotID, p.URL, p.Title, p.Content, p.CrawledAt.Unix())
	if err != nil {
		return fmt.Errorf("upsert page %s: %w", p.URL, err)
	}
	return nil
}

// GetPage returns one page, or nil if absent.
func (s *Store) GetPage(ctx context.Context, chatbotID, url string) (*crawl.Page, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT chatbot_id, url, title, content, crawled_at
		FROM crawled_pages WHERE chatbot_id = ? AND url = ?`, chatbotID, url)

	var p crawl.Page
	var crawledAt int64
	err := row.Scan(&p.ChatbotID, &p.URL, &p.Title, &p.Content, &crawledAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get page: %w", err)
	}
	p.CrawledAt = time.Unix(crawledAt, 0).UTC()
	return &p, nil
}

// ListPages returns a chatbot's pages ordered by crawl time, newest first.
func (s *Store) ListPages(ctx context.Context, chatbotID string, limit, offset int) ([]*crawl.Page, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT chatbot_id, url, title, content, crawled_at
		FROM crawled_pages WHERE chatbot_id = ?
		ORDER BY crawled_at DESC, url LIMIT ? OFFSET ?`, chatbotID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*crawl.Page
	for rows.Next() {
		var p crawl.Page
		var crawledAt int64
		if err := rows.Scan(&p.ChatbotID, &p.URL, &p.Title, &p.Content, &crawledAt); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		p.CrawledAt = time.Unix(crawledAt, 0).UTC()
		pages = append(pages, &p)
	}
	return pages, rows.Err()
}

// CountPages returns the number of stored pages for a chatbot.
func (s *Store) CountPages(ctx context.Context, chatbotID string) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM crawled_pages WHERE chatbot_id = ?`, chatbotID).Scan(&n)
	return n, err
}

// DeletePage removes one page and its chunks.
func (s *Store) DeletePage(ctx context.Context, chatbotID, url string) error {
	if _, err := s.DB.ExecContext(ctx,
		`DELETE FROM crawled_pages WHERE chatbot_id = ? AND url = ?`, chatbotID, url); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	if _, err := s.DB.ExecContext(ctx,
		`DELETE FROM chunks WHERE chatbot_id = ? AND source_url = ?`, chatbotID, url); err != nil {
		return fmt.Errorf("delete page chunks: %w", err)
	}
	return nil
}

// DeleteChatbotContent removes all pages and chunks owned by a chatbot.
// Called when the owning chatbot is deleted.
func (s *Store) DeleteChatbotContent(ctx context.Context, chatbotID string) error {
	if _, err := s.DB.ExecContext(ctx,
		`DELETE FROM crawled_pages WHERE chatbot_id = ?`, chatbotID); err != nil {
		return fmt.Errorf("delete chatbot pages: %w", err)
	}
	if _, err := s.DB.ExecContext(ctx,
		`DELETE FROM chunks WHERE chatbot_id = ?`, chatbotID); err != nil {
		return fmt.Errorf("delete chatbot chunks: %w", err)
	}
	return nil
}
