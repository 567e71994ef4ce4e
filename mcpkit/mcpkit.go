// Package mcpkit holds the small helpers shared by every package that
// registers tools on an MCP server: object schema construction and the
// two result shapes (JSON text payload, tool error).
package mcpkit

import (
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// InputSchema builds an object schema from property definitions and the
// list of required property names.
func InputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// TextResult marshals v to JSON and wraps it as a text tool result.
// Marshal failures become tool errors, never transport errors.
func TextResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return ErrorResult(err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

// ErrorResult wraps err as a tool-level error result. The transport-level
// error is always nil: a failed tool call is still a delivered response.
func ErrorResult(err error) (*mcp.CallToolResult, error) {
	var res mcp.CallToolResult
	res.SetError(err)
	return &res, nil
}
