package domain

// JSON-RPC 2.0 error codes used for rejected tool calls
const (
	MethodNotFound = -32601 // Unknown tool
	InvalidParams  = -32602 // Arguments do not match the tool's schema
	InternalError  = -32603 // Server internal error
)

// Error represents a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface for Error.
func (e *Error) Error() string {
	return e.Message
}
