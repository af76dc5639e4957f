package domain

import (
	"github.com/google/jsonschema-go/jsonschema"
)

// ContentTypeText is the only content block type produced by the server.
const ContentTypeText = "text"

// ToolDefinition represents an MCP tool definition.
// This describes a tool that can be called by MCP clients. The input schema
// is announced to clients verbatim and is also the schema arguments are
// validated against before the tool runs.
type ToolDefinition struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

// ToolRequest represents an MCP tool call request.
// This is the request format when a client invokes a tool.
type ToolRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResponse represents an MCP tool call response (the result envelope).
// Every invocation produces exactly one text content block, whether the
// upstream call succeeded or failed.
type ToolResponse struct {
	Content []ContentBlock `json:"content"`
}

// ContentBlock represents a piece of content in the response.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewTextResponse wraps text in a single-block envelope.
func NewTextResponse(text string) *ToolResponse {
	return &ToolResponse{
		Content: []ContentBlock{
			{
				Type: ContentTypeText,
				Text: text,
			},
		},
	}
}

// Text returns the text of the first content block, or an empty string for
// an empty envelope.
func (r *ToolResponse) Text() string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	return r.Content[0].Text
}
