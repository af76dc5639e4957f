package domain

import (
	"encoding/json"
	"testing"
)

// TestErrorJSONSerialization verifies Error struct JSON serialization.
func TestErrorJSONSerialization(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "error without data",
			err:      &Error{Code: MethodNotFound, Message: "unknown tool: Nope"},
			expected: `{"code":-32601,"message":"unknown tool: Nope"}`,
		},
		{
			name: "error with data",
			err: &Error{
				Code:    InvalidParams,
				Message: "invalid arguments for SearchMicroCMS: missing required parameters: q",
				Data:    map[string]any{"missing": []string{"q"}},
			},
			expected: `{"code":-32602,"message":"invalid arguments for SearchMicroCMS: missing required parameters: q","data":{"missing":["q"]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.err)
			if err != nil {
				t.Fatalf("json.Marshal() error = %v", err)
			}
			if string(data) != tt.expected {
				t.Errorf("json.Marshal() = %s, want %s", string(data), tt.expected)
			}
		})
	}
}

// TestErrorInterface verifies Error implements the error interface.
func TestErrorInterface(t *testing.T) {
	var err error = &Error{Code: InternalError, Message: "boom"}
	if err.Error() != "boom" {
		t.Errorf("Error() = %s, want boom", err.Error())
	}
}
