package hashembed

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/chatlas/chatlas/mcpkit"
)

// RegisterMCP registers the embedding tools on an MCP server.
func RegisterMCP(srv *mcp.Server, emb Embedder) {
	registerEmbedTool(srv, emb)
	registerBatchTool(srv, emb)
}

func registerEmbedTool(srv *mcp.Server, emb Embedder) {
	tool := &mcp.Tool{
		Name:        "chatlas_embed",
		Description: "Generate a deterministic embedding vector for a single text string.",
		InputSchema: mcpkit.InputSchema(map[string]any{
			"text": map[string]any{"type": "string", "description": "Text to embed"},
		}, []string{"text"}),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return mcpkit.ErrorResult(errors.New("invalid arguments: " + err.Error()))
		}
		vec, err := emb.Embed(ctx, r.Text)
		if err != nil {
			return mcpkit.ErrorResult(err)
		}
		return mcpkit.TextResult(map[string]any{
			"embedding": vec,
			"dimension": len(vec),
			"model":     emb.Model(),
		})
	})
}

func registerBatchTool(srv *mcp.Server, emb Embedder) {
	tool := &mcp.Tool{
		Name:        "chatlas_embed_batch",
		Description: "Generate deterministic embedding vectors for multiple texts in one call.",
		InputSchema: mcpkit.InputSchema(map[string]any{
			"texts": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Texts to embed",
			},
		}, []string{"texts"}),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r struct {
			Texts []string `json:"texts"`
		}
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return mcpkit.ErrorResult(errors.New("invalid arguments: " + err.Error()))
		}
		vecs, err := emb.EmbedBatch(ctx, r.Texts)
		if err != nil {
			return mcpkit.ErrorResult(err)
		}
		return mcpkit.TextResult(map[string]any{
			"embeddings": vecs,
			"count":      len(vecs),
			"dimension":  emb.Dimension(),
			"model":      emb.Model(),
		})
	})
}
