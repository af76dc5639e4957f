package application

import (
	"context"

	"microcms-mcp-server/internal/domain"
)

// ToolGetContent is the name of the get-by-id tool.
const ToolGetContent = "GetMicroCMSContent"

// getContentFailurePrefix starts the envelope text of a failed fetch.
const getContentFailurePrefix = "Failed to get MicroCMS content"

// GetContentParams are the arguments of GetMicroCMSContent.
type GetContentParams struct {
	Endpoint  string  `json:"endpoint" jsonschema:"API endpoint (e.g., 'blogs')"`
	ContentID string  `json:"contentId" jsonschema:"Content ID to retrieve"`
	Fields    *string `json:"fields,omitempty" jsonschema:"Comma-separated list of fields to return"`
	Depth     *int    `json:"depth,omitempty" jsonschema:"Depth for expanding references"`
}

// Query builds the upstream get query from the non-zero optional parameters.
func (p GetContentParams) Query() domain.Query {
	query := domain.Query{}
	query.SetString(domain.QueryFields, p.Fields)
	query.SetInt(domain.QueryDepth, p.Depth)
	return query
}

// ContentHandler implements GetMicroCMSContent. Unlike search, the endpoint
// is chosen by the caller.
type ContentHandler struct {
	client domain.ContentClient
	mapper domain.ResponseMapper
	logger *StructuredLogger
	def    domain.ToolDefinition
}

// NewContentHandler creates a new ContentHandler instance.
func NewContentHandler(client domain.ContentClient, mapper domain.ResponseMapper, logger *StructuredLogger) (*ContentHandler, error) {
	schema, err := SchemaFor[GetContentParams]()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = NewStructuredLogger()
	}

	return &ContentHandler{
		client: client,
		mapper: mapper,
		logger: logger,
		def: domain.ToolDefinition{
			Name:        ToolGetContent,
			Description: "Get specific content from MicroCMS by ID",
			InputSchema: schema,
		},
	}, nil
}

// Definition returns the GetMicroCMSContent tool definition.
func (h *ContentHandler) Definition() domain.ToolDefinition {
	return h.def
}

// Handle fetches one content item.
func (h *ContentHandler) Handle(ctx context.Context, args map[string]any) (*domain.ToolResponse, error) {
	params, err := DecodeParams[GetContentParams](args)
	if err != nil {
		return nil, &domain.ValidationError{Tool: ToolGetContent, Err: err}
	}

	response, err := h.client.GetContent(ctx, params.Endpoint, params.ContentID, params.Query())
	if err != nil {
		return h.fail(ctx, "get", params, err), nil
	}

	resp, err := h.mapper.MapToToolResponse(response)
	if err != nil {
		return h.fail(ctx, "format", params, err), nil
	}

	return resp, nil
}

func (h *ContentHandler) fail(ctx context.Context, op string, params GetContentParams, err error) *domain.ToolResponse {
	upstreamErr := domain.NewUpstreamError(op, err)
	recordUpstreamFailure(ctx, upstreamErr)
	h.logger.LogError("Error getting MicroCMS content", err, map[string]any{
		"endpoint":   params.Endpoint,
		"content_id": params.ContentID,
		"operation":  op,
		"error_kind": string(upstreamErr.Kind),
	})
	return h.mapper.MapError(getContentFailurePrefix, upstreamErr)
}
