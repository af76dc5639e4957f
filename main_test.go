package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"microcms-mcp-server/internal/application"
	"microcms-mcp-server/internal/domain"
)

// fullEnv returns a lookup with every required variable set.
func fullEnv(overrides map[string]string) domain.LookupFunc {
	env := map[string]string{
		domain.EnvAPIKey:        "test-key",
		domain.EnvServiceDomain: "example",
		domain.EnvEndpoint:      "blogs",
	}
	for k, v := range overrides {
		env[k] = v
	}
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func quietOptions(lookup domain.LookupFunc) options {
	return options{
		lookup: lookup,
		logger: application.NewStructuredLoggerWithWriter(io.Discard),
	}
}

// TestBootstrapRegistersTools tests that a complete environment yields a server with both tools
func TestBootstrapRegistersTools(t *testing.T) {
	server, err := bootstrap(quietOptions(fullEnv(nil)))
	if err != nil {
		t.Fatalf("Expected bootstrap to succeed, got %v", err)
	}

	reply := server.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := jsonString(reply)
	if err != nil {
		t.Fatalf("Failed to encode reply: %v", err)
	}
	for _, name := range []string{"SearchMicroCMS", "GetMicroCMSContent"} {
		if !strings.Contains(data, name) {
			t.Errorf("Expected tools/list to announce %s, got %s", name, data)
		}
	}
}

// TestBootstrapMissingEnvironment tests that nothing is built without credentials
func TestBootstrapMissingEnvironment(t *testing.T) {
	tests := []struct {
		name     string
		unset    string
		expected string
	}{
		{"api key", domain.EnvAPIKey, "MICROCMS_API_KEY environment variable is not set"},
		{"service domain", domain.EnvServiceDomain, "MICROCMS_SERVICE_DOMAIN environment variable is not set"},
		{"endpoint", domain.EnvEndpoint, "MICROCMS_ENDPOINT environment variable is not set"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := bootstrap(quietOptions(fullEnv(map[string]string{tt.unset: ""})))
			if server != nil {
				t.Error("Expected no server without complete configuration")
			}

			var configErr *domain.ConfigurationError
			if !errors.As(err, &configErr) {
				t.Fatalf("Expected ConfigurationError, got %v", err)
			}
			if err.Error() != tt.expected {
				t.Errorf("Expected error %q, got %q", tt.expected, err.Error())
			}
		})
	}
}

// TestBootstrapTransportOverride tests that the --transport flag is validated
func TestBootstrapTransportOverride(t *testing.T) {
	opts := quietOptions(fullEnv(nil))
	opts.transport = "websocket"

	if _, err := bootstrap(opts); err == nil || !strings.Contains(err.Error(), "invalid transport type 'websocket'") {
		t.Errorf("Expected invalid transport error, got %v", err)
	}

	opts.transport = "http"
	if _, err := bootstrap(opts); err != nil {
		t.Errorf("Expected http transport to be accepted, got %v", err)
	}
}

// TestBootstrapConfigFile tests that the optional YAML file is honoured
func TestBootstrapConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  name: microcms-staging
transport:
  type: stdio
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	opts := quietOptions(fullEnv(nil))
	opts.configPath = path
	server, err := bootstrap(opts)
	if err != nil {
		t.Fatalf("Expected bootstrap to succeed, got %v", err)
	}

	reply := server.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`))
	data, err := jsonString(reply)
	if err != nil {
		t.Fatalf("Failed to encode reply: %v", err)
	}
	if !strings.Contains(data, "microcms-staging") {
		t.Errorf("Expected configured server name in %s", data)
	}
}

// TestRunStdioUntilEOF tests that the stdio transport stops cleanly at end of input
func TestRunStdioUntilEOF(t *testing.T) {
	opts := quietOptions(fullEnv(nil))
	opts.in = strings.NewReader("")
	opts.out = &bytes.Buffer{}

	if err := run(context.Background(), opts); err != nil {
		t.Errorf("Expected clean shutdown, got %v", err)
	}
}

// TestRootCommandMissingEnvironment tests the error written by the command itself
func TestRootCommandMissingEnvironment(t *testing.T) {
	t.Setenv(domain.EnvAPIKey, "")
	t.Setenv(domain.EnvServiceDomain, "example")
	t.Setenv(domain.EnvEndpoint, "blogs")

	cmd := newRootCommand()
	stderr := &bytes.Buffer{}
	cmd.SetErr(stderr)
	cmd.SetOut(io.Discard)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(nil)

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatal("Expected command to fail without an API key")
	}
	if !strings.Contains(stderr.String(), "Error: MICROCMS_API_KEY environment variable is not set") {
		t.Errorf("Unexpected stderr: %q", stderr.String())
	}
}

// TestMainExitsWithStatusOne tests the process exit status on missing configuration
func TestMainExitsWithStatusOne(t *testing.T) {
	if os.Getenv("MICROCMS_MCP_SERVER_TEST_MAIN") == "1" {
		os.Args = []string{"microcms-mcp-server"}
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestMainExitsWithStatusOne$")
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "MICROCMS_") {
			cmd.Env = append(cmd.Env, kv)
		}
	}
	cmd.Env = append(cmd.Env, "MICROCMS_MCP_SERVER_TEST_MAIN=1")
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	err := cmd.Run()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Expected process to exit with an error, got %v", err)
	}
	if exitErr.ExitCode() != 1 {
		t.Errorf("Expected exit status 1, got %d", exitErr.ExitCode())
	}
	if !strings.Contains(stderr.String(), "Error: MICROCMS_API_KEY environment variable is not set") {
		t.Errorf("Unexpected stderr: %q", stderr.String())
	}
}

func jsonString(v any) (string, error) {
	data, err := json.Marshal(v)
	return string(data), err
}
