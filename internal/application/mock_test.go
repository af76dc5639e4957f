package application

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"microcms-mcp-server/internal/domain"
)

// contentCall records one call made to stubClient.
type contentCall struct {
	method    string
	endpoint  string
	contentID string
	query     domain.Query
}

// stubClient is a test implementation of domain.ContentClient.
type stubClient struct {
	mu       sync.Mutex
	calls    []contentCall
	response json.RawMessage
	err      error
}

func (s *stubClient) ListContent(ctx context.Context, endpoint string, query domain.Query) (json.RawMessage, error) {
	return s.record(contentCall{method: "list", endpoint: endpoint, query: query})
}

func (s *stubClient) GetContent(ctx context.Context, endpoint, contentID string, query domain.Query) (json.RawMessage, error) {
	return s.record(contentCall{method: "get", endpoint: endpoint, contentID: contentID, query: query})
}

func (s *stubClient) record(call contentCall) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, call)
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func (s *stubClient) lastCall() contentCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.calls) == 0 {
		return contentCall{}
	}
	return s.calls[len(s.calls)-1]
}

func (s *stubClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// captureLogger returns a logger writing into the returned buffer.
func captureLogger() (*StructuredLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewStructuredLoggerWithWriter(buf), buf
}

// newTestHandlers builds both tool handlers on top of client.
func newTestHandlers(client domain.ContentClient, logger *StructuredLogger) (*SearchHandler, *ContentHandler) {
	mapper := domain.NewResponseMapper()
	search, err := NewSearchHandler(client, mapper, "blogs", logger)
	if err != nil {
		panic(err)
	}
	content, err := NewContentHandler(client, mapper, logger)
	if err != nil {
		panic(err)
	}
	return search, content
}

// newTestRouter builds a router with both tools registered.
func newTestRouter(client domain.ContentClient, opts ...RouterOption) *RequestRouter {
	logger, _ := captureLogger()
	search, content := newTestHandlers(client, logger)

	opts = append([]RouterOption{WithLogger(logger)}, opts...)
	router, err := NewRequestRouter([]domain.ToolHandler{search, content}, opts...)
	if err != nil {
		panic(err)
	}
	return router
}

func intPtr(v int) *int          { return &v }
func stringPtr(v string) *string { return &v }
