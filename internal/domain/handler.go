package domain

import (
	"context"
)

// ToolHandler processes calls for a single MCP tool.
// Each microCMS operation (search, get content) has its own handler that
// implements this interface.
type ToolHandler interface {
	// Definition returns the tool's name, description and parameter schema.
	// The definition is fixed for the lifetime of the handler.
	Definition() ToolDefinition

	// Handle processes arguments that already passed schema validation.
	// Upstream failures are reported inside the returned envelope; a non-nil
	// error means the arguments could not be interpreted at all.
	Handle(ctx context.Context, args map[string]any) (*ToolResponse, error)
}
