package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/chatlas/chatlas/mcpkit"
)

// RegisterMCP registers the crawl and search tools on an MCP server. The
// embedding tools live in the hashembed package; together they expose the
// full API surface to MCP clients.
func (s *Server) RegisterMCP(srv *mcp.Server) {
	s.registerCrawlTool(srv)
	s.registerSearchTool(srv)
}

func (s *Server) registerCrawlTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "chatlas_crawl",
		Description: "Crawl a website breadth-first and store its pages as chatbot knowledge.",
		InputSchema: mcpkit.InputSchema(map[string]any{
			"chatbot_id": map[string]any{"type": "string", "description": "Owning chatbot"},
			"url":        map[string]any{"type": "string", "description": "Seed URL"},
			"max_pages":  map[string]any{"type": "integer", "description": "Page limit (capped at 20)"},
		}, []string{"chatbot_id", "url"}),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r struct {
			ChatbotID string `json:"chatbot_id"`
			URL       string `json:"url"`
			MaxPages  int    `json:"max_pages"`
		}
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return mcpkit.ErrorResult(errors.New("invalid arguments: " + err.Error()))
		}
		if r.ChatbotID == "" || r.URL == "" {
			return mcpkit.ErrorResult(errors.New("chatbot_id and url are required"))
		}

		report := s.crawler.Crawl(ctx, r.ChatbotID, r.URL, r.MaxPages)

		for _, res := range report.Results {
			if !res.Success {
				continue
			}
			page, err := s.store.GetPage(ctx, r.ChatbotID, res.URL)
			if err != nil || page == nil {
				continue
			}
			if _, _, err := s.indexText(ctx, r.ChatbotID, page.URL, page.Content); err != nil {
				s.logger.Warn("indexing crawled page failed", "url", res.URL, "error", err)
			}
		}

		return mcpkit.TextResult(report)
	})
}

func (s *Server) registerSearchTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "chatlas_search",
		Description: "Find the chatbot knowledge chunks most similar to a query.",
		InputSchema: mcpkit.InputSchema(map[string]any{
			"chatbot_id": map[string]any{"type": "string", "description": "Owning chatbot"},
			"query":      map[string]any{"type": "string", "description": "Search query"},
			"top_k":      map[string]any{"type": "integer", "description": "Number of results (default 5)"},
		}, []string{"chatbot_id", "query"}),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r struct {
			ChatbotID string `json:"chatbot_id"`
			Query     string `json:"query"`
			TopK      int    `json:"top_k"`
		}
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return mcpkit.ErrorResult(errors.New("invalid arguments: " + err.Error()))
		}
		if r.ChatbotID == "" {
			return mcpkit.ErrorResult(errors.New("chatbot_id is required"))
		}

		results, err := s.searcher.Search(ctx, r.ChatbotID, r.Query, r.TopK)
		if err != nil {
			return mcpkit.ErrorResult(err)
		}
		return mcpkit.TextResult(map[string]any{
			"results": results,
			"count":   len(results),
		})
	})
}
