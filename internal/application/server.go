package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"microcms-mcp-server/internal/domain"
)

// shutdownTimeout bounds the HTTP transport's graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Server is the MCP server.
// It announces the registered tools to clients, routes tools/call requests
// through the RequestRouter and writes the resulting envelopes back.
type Server struct {
	mcp    *server.MCPServer
	router *RequestRouter
	config *domain.Config
	logger *StructuredLogger
}

// NewServer creates a new MCP server instance exposing every tool the
// router knows about.
func NewServer(router *RequestRouter, config *domain.Config, logger *StructuredLogger) (*Server, error) {
	if logger == nil {
		logger = NewStructuredLogger()
	}

	s := &Server{
		mcp: server.NewMCPServer(
			config.Server.Name,
			config.Server.Version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		router: router,
		config: config,
		logger: logger,
	}

	// Announce each tool with the same schema its arguments are validated against
	for _, def := range router.ListAllTools() {
		schema, err := json.Marshal(def.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal schema of tool %s: %w", def.Name, err)
		}
		s.mcp.AddTool(mcp.NewToolWithRawSchema(def.Name, def.Description, schema), s.callTool)
	}

	return s, nil
}

// callTool adapts an MCP tools/call request to the router. Unknown tools and
// invalid arguments become JSON-RPC errors; everything else is an envelope.
func (s *Server) callTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.router.Route(ctx, &domain.ToolRequest{
		Name:      request.Params.Name,
		Arguments: request.GetArguments(),
	})
	if err != nil {
		return nil, MapError(err)
	}

	return toCallToolResult(resp), nil
}

// toCallToolResult converts an envelope into the mcp-go result type.
func toCallToolResult(resp *domain.ToolResponse) *mcp.CallToolResult {
	result := &mcp.CallToolResult{
		Content: make([]mcp.Content, 0, len(resp.Content)),
	}
	for _, block := range resp.Content {
		result.Content = append(result.Content, mcp.NewTextContent(block.Text))
	}
	return result
}

// HandleMessage processes one raw JSON-RPC message and returns the reply.
// This is primarily used for testing.
func (s *Server) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	return s.mcp.HandleMessage(ctx, message)
}

// Serve runs the configured transport until the channel closes, ctx is
// cancelled or the transport fails.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	switch s.config.Transport.Type {
	case domain.TransportHTTP:
		return s.ServeHTTP(ctx, s.config.Transport.HTTP.Addr())
	case domain.TransportStdio, "":
		return s.ServeStdio(ctx, in, out)
	default:
		return fmt.Errorf("invalid transport type: %s", s.config.Transport.Type)
	}
}

// ServeStdio reads newline-delimited JSON-RPC messages from in and writes
// replies to out. Reaching EOF on in is a clean shutdown.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Slog().Handler(), slog.LevelError))

	s.logger.LogInfo("MicroCMS MCP Server running on stdio", map[string]any{
		"server":  s.config.Server.Name,
		"version": s.config.Server.Version,
		"tools":   len(s.router.ListAllTools()),
	})

	err := stdio.Listen(ctx, in, out)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		s.logger.LogInfo("server stopped", nil)
		return nil
	}
	return err
}

// ServeHTTP serves the streamable HTTP transport on addr under /mcp.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	httpServer := server.NewStreamableHTTPServer(s.mcp)

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Start(addr)
	}()

	s.logger.LogInfo("MicroCMS MCP Server running on http", map[string]any{
		"server":  s.config.Server.Name,
		"version": s.config.Server.Version,
		"addr":    addr,
	})

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down HTTP transport: %w", err)
		}
		s.logger.LogInfo("server stopped", nil)
		return nil
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP transport failed: %w", err)
	}
}
