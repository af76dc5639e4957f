package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"microcms-mcp-server/internal/domain"
)

// RequestRouter is the tool registry. It maps tool names to handlers and
// their compiled parameter schemas, validates arguments and dispatches
// calls. Tools are registered once at startup; the table is read-only
// afterwards, so Route is safe for concurrent use.
type RequestRouter struct {
	tools    map[string]*registeredTool
	order    []string
	logger   *StructuredLogger
	observer *ToolObserver
}

// registeredTool pairs a handler with its compiled schema.
type registeredTool struct {
	handler domain.ToolHandler
	params  *ParamSchema
}

// RouterOption configures a RequestRouter.
type RouterOption func(*RequestRouter)

// WithLogger sets the logger used for per-call logging.
func WithLogger(logger *StructuredLogger) RouterOption {
	return func(r *RequestRouter) {
		r.logger = logger
	}
}

// WithObserver sets the OpenTelemetry observer.
func WithObserver(observer *ToolObserver) RouterOption {
	return func(r *RequestRouter) {
		r.observer = observer
	}
}

// NewRequestRouter creates a RequestRouter and registers the provided
// handlers. It fails if two handlers share a name or a schema cannot be
// compiled.
func NewRequestRouter(handlers []domain.ToolHandler, opts ...RouterOption) (*RequestRouter, error) {
	router := &RequestRouter{
		tools:  make(map[string]*registeredTool),
		logger: NewStructuredLogger(),
	}
	for _, opt := range opts {
		opt(router)
	}

	for _, handler := range handlers {
		if err := router.Register(handler); err != nil {
			return nil, err
		}
	}

	return router, nil
}

// Register adds a tool. Registering a name twice is an error.
func (r *RequestRouter) Register(handler domain.ToolHandler) error {
	def := handler.Definition()
	if def.Name == "" {
		return errors.New("tool name is required")
	}
	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("tool %s is already registered", def.Name)
	}

	params, err := CompileParamSchema(def.InputSchema)
	if err != nil {
		return fmt.Errorf("tool %s: %w", def.Name, err)
	}

	r.tools[def.Name] = &registeredTool{
		handler: handler,
		params:  params,
	}
	r.order = append(r.order, def.Name)

	return nil
}

// Route dispatches a tool request to its handler after validating the
// arguments. It returns domain.ErrUnknownTool (wrapped) for unregistered
// names and a *domain.ValidationError for non-conforming arguments; in
// both cases the handler is not invoked.
func (r *RequestRouter) Route(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	invocationID := uuid.NewString()
	ctx, invocation := r.observer.Start(ctx, req.Name, invocationID)

	// Find the appropriate handler
	tool, exists := r.tools[req.Name]
	if !exists {
		err := fmt.Errorf("%w: %s", domain.ErrUnknownTool, req.Name)
		r.logger.LogError("tool call rejected", err, map[string]any{
			"tool":          req.Name,
			"invocation_id": invocationID,
		})
		invocation.End(ctx, OutcomeUnknownTool, err)
		return nil, err
	}

	// Validate arguments against the declared schema
	if err := tool.params.Validate(req.Name, req.Arguments); err != nil {
		r.logger.LogError("tool call rejected", err, map[string]any{
			"tool":          req.Name,
			"invocation_id": invocationID,
		})
		invocation.End(ctx, OutcomeInvalidArgument, err)
		return nil, err
	}

	r.logger.LogInfo("tool call", map[string]any{
		"tool":          req.Name,
		"invocation_id": invocationID,
	})

	// Delegate to the handler
	resp, err := tool.handler.Handle(ctx, req.Arguments)
	if err != nil {
		r.logger.LogError("tool call failed", err, map[string]any{
			"tool":          req.Name,
			"invocation_id": invocationID,
		})
		invocation.End(ctx, OutcomeFailed, err)
		return nil, err
	}

	invocation.End(ctx, OutcomeCompleted, nil)
	return resp, nil
}

// ListAllTools returns the definitions of all registered tools in
// registration order. This is used for MCP tool discovery (tools/list).
func (r *RequestRouter) ListAllTools() []domain.ToolDefinition {
	tools := make([]domain.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name].handler.Definition())
	}
	return tools
}

// GetHandler returns the handler for a specific tool name.
// This is useful for testing and debugging.
func (r *RequestRouter) GetHandler(name string) (domain.ToolHandler, bool) {
	tool, exists := r.tools[name]
	if !exists {
		return nil, false
	}
	return tool.handler, true
}

// MapError converts a routing error into a JSON-RPC error object.
func MapError(err error) *domain.Error {
	if err == nil {
		return nil
	}

	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrUnknownTool):
		return &domain.Error{Code: domain.MethodNotFound, Message: err.Error()}
	case errors.As(err, &validationErr):
		data := map[string]any{}
		if len(validationErr.Missing) > 0 {
			data["missing"] = validationErr.Missing
		}
		if len(validationErr.Invalid) > 0 {
			data["invalid"] = validationErr.Invalid
		}
		return &domain.Error{Code: domain.InvalidParams, Message: err.Error(), Data: data}
	default:
		return &domain.Error{Code: domain.InternalError, Message: err.Error()}
	}
}
