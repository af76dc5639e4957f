package application

import (
	"context"

	"microcms-mcp-server/internal/domain"
)

// ToolSearch is the name of the search tool.
const ToolSearch = "SearchMicroCMS"

// searchFailurePrefix starts the envelope text of a failed search.
const searchFailurePrefix = "Failed to search MicroCMS"

// SearchParams are the arguments of SearchMicroCMS. Optional parameters are
// pointers; Query decides which of them are sent.
type SearchParams struct {
	Q       string  `json:"q" jsonschema:"Search query"`
	Limit   *int    `json:"limit,omitempty" jsonschema:"Maximum number of results to return"`
	Offset  *int    `json:"offset,omitempty" jsonschema:"Number of items to skip"`
	Fields  *string `json:"fields,omitempty" jsonschema:"Comma-separated list of fields to return"`
	Orders  *string `json:"orders,omitempty" jsonschema:"Sort order (e.g., '-publishedAt')"`
	Filters *string `json:"filters,omitempty" jsonschema:"Filters in the format 'field[operator]=value'"`
}

// Query builds the upstream list query. q is always sent; optional
// parameters only when non-zero.
func (p SearchParams) Query() domain.Query {
	query := domain.Query{domain.QueryQ: p.Q}
	query.SetInt(domain.QueryLimit, p.Limit)
	query.SetInt(domain.QueryOffset, p.Offset)
	query.SetString(domain.QueryFields, p.Fields)
	query.SetString(domain.QueryOrders, p.Orders)
	query.SetString(domain.QueryFilters, p.Filters)
	return query
}

// SearchHandler implements SearchMicroCMS against the endpoint fixed in the
// server configuration.
type SearchHandler struct {
	client   domain.ContentClient
	mapper   domain.ResponseMapper
	endpoint string
	logger   *StructuredLogger
	def      domain.ToolDefinition
}

// NewSearchHandler creates a new SearchHandler instance.
func NewSearchHandler(client domain.ContentClient, mapper domain.ResponseMapper, endpoint string, logger *StructuredLogger) (*SearchHandler, error) {
	schema, err := SchemaFor[SearchParams]()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = NewStructuredLogger()
	}

	return &SearchHandler{
		client:   client,
		mapper:   mapper,
		endpoint: endpoint,
		logger:   logger,
		def: domain.ToolDefinition{
			Name:        ToolSearch,
			Description: "Search content in MicroCMS",
			InputSchema: schema,
		},
	}, nil
}

// Definition returns the SearchMicroCMS tool definition.
func (h *SearchHandler) Definition() domain.ToolDefinition {
	return h.def
}

// Handle runs a search. Upstream failures are returned as envelope text,
// never as an error.
func (h *SearchHandler) Handle(ctx context.Context, args map[string]any) (*domain.ToolResponse, error) {
	params, err := DecodeParams[SearchParams](args)
	if err != nil {
		return nil, &domain.ValidationError{Tool: ToolSearch, Err: err}
	}

	response, err := h.client.ListContent(ctx, h.endpoint, params.Query())
	if err != nil {
		return h.fail(ctx, "list", err), nil
	}

	resp, err := h.mapper.MapToToolResponse(response)
	if err != nil {
		return h.fail(ctx, "format", err), nil
	}

	return resp, nil
}

// fail records a failed search and renders it under the search prefix.
func (h *SearchHandler) fail(ctx context.Context, op string, err error) *domain.ToolResponse {
	upstreamErr := domain.NewUpstreamError(op, err)
	recordUpstreamFailure(ctx, upstreamErr)
	h.logger.LogError("Error searching MicroCMS", err, map[string]any{
		"endpoint":   h.endpoint,
		"operation":  op,
		"error_kind": string(upstreamErr.Kind),
	})
	return h.mapper.MapError(searchFailurePrefix, upstreamErr)
}
