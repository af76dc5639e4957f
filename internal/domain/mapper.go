package domain

import (
	"encoding/json"
)

// ResponseMapper converts upstream results into MCP tool responses.
// Every envelope it yields has a single text block so callers can parse
// every result the same way.
type ResponseMapper interface {
	// MapToToolResponse pretty-prints an upstream JSON document. It fails
	// with ErrEmptyResponse or a JSON syntax error when there is no
	// document to print.
	MapToToolResponse(apiResponse json.RawMessage) (*ToolResponse, error)

	// MapError renders a failed upstream call as "<prefix>: <message>".
	MapError(prefix string, err error) *ToolResponse
}
