package application

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestStructuredLogger(t *testing.T) {
	logger, buf := captureLogger()

	logger.LogInfo("configuration loaded", map[string]any{"endpoint": "blogs", "transport": "stdio"})
	logger.LogError("Error searching MicroCMS", errors.New("401 Unauthorized"), map[string]any{"endpoint": "blogs"})
	logger.LogError("no error attached", nil, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 log lines, got %d: %q", len(lines), buf.String())
	}

	var info map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &info); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", lines[0], err)
	}
	if info["level"] != "INFO" || info["msg"] != "configuration loaded" {
		t.Errorf("Unexpected info entry: %v", info)
	}
	if info["endpoint"] != "blogs" || info["transport"] != "stdio" {
		t.Errorf("Expected context fields in info entry, got %v", info)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", lines[1], err)
	}
	if entry["level"] != "ERROR" || entry["error"] != "401 Unauthorized" {
		t.Errorf("Unexpected error entry: %v", entry)
	}

	if strings.Contains(lines[2], `"error"`) {
		t.Errorf("Expected no error attribute for nil error, got %q", lines[2])
	}
}
