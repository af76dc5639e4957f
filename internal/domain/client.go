package domain

import (
	"context"
	"encoding/json"
)

// ContentClient defines the operations of the remote content repository.
// Implementations return upstream failures unchanged; normalising them into
// envelopes is the job of the tool handlers.
type ContentClient interface {
	// ListContent queries a list endpoint (e.g. "blogs").
	ListContent(ctx context.Context, endpoint string, query Query) (json.RawMessage, error)

	// GetContent fetches a single content item from an endpoint by ID.
	GetContent(ctx context.Context, endpoint, contentID string, query Query) (json.RawMessage, error)
}
