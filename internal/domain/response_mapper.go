package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultResponseMapper is the default implementation of ResponseMapper.
type DefaultResponseMapper struct{}

// NewResponseMapper creates a new instance of DefaultResponseMapper.
func NewResponseMapper() ResponseMapper {
	return &DefaultResponseMapper{}
}

// MapToToolResponse converts an API response to MCP format.
// The document is re-indented with two spaces but otherwise passed through
// verbatim, so key order and number precision survive. An empty body or a
// body that is not JSON is returned as an error for the caller to render
// with its own failure prefix.
func (m *DefaultResponseMapper) MapToToolResponse(apiResponse json.RawMessage) (*ToolResponse, error) {
	trimmed := bytes.TrimSpace(apiResponse)
	if len(trimmed) == 0 {
		return nil, ErrEmptyResponse
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return nil, err
	}

	return NewTextResponse(buf.String()), nil
}

// MapError converts an upstream failure into an envelope whose text begins
// with prefix. The message is the error's own text; an UpstreamError
// contributes only its underlying message, not the operation name.
func (m *DefaultResponseMapper) MapError(prefix string, err error) *ToolResponse {
	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		upstreamErr = NewUpstreamError("", err)
	}

	return NewTextResponse(fmt.Sprintf("%s: %s", prefix, upstreamErr.Message()))
}
