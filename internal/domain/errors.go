package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
)

// ErrUnknownTool is returned when a tool call names a tool that was never
// registered.
var ErrUnknownTool = errors.New("unknown tool")

// ErrEmptyResponse is returned when the content API answers without a body.
var ErrEmptyResponse = errors.New("empty response body")

// ConfigurationError reports a required configuration value that is
// missing or invalid. It is fatal: the server never starts serving.
type ConfigurationError struct {
	Variable string
	Reason   string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %s", e.Variable, e.Reason)
	}
	return fmt.Sprintf("%s environment variable is not set", e.Variable)
}

// ValidationError reports tool arguments that do not conform to the tool's
// parameter schema.
type ValidationError struct {
	Tool    string
	Missing []string // required parameters that were absent
	Invalid []string // parameters present with the wrong shape
	Err     error    // underlying schema engine error, if any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required parameters: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid parameters: "+strings.Join(e.Invalid, ", "))
	}
	if len(parts) == 0 && e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(parts) == 0 {
		parts = append(parts, "arguments do not match schema")
	}
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(parts, "; "))
}

// Unwrap returns the schema engine error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Empty reports whether no field-level problem was recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0 && e.Err == nil
}

// Sort orders the field lists so messages are stable.
func (e *ValidationError) Sort() {
	sort.Strings(e.Missing)
	sort.Strings(e.Invalid)
}

// UpstreamErrorKind classifies a failed content repository call.
type UpstreamErrorKind string

const (
	// UpstreamNetwork covers transport failures, timeouts and cancellation.
	UpstreamNetwork UpstreamErrorKind = "network"
	// UpstreamRemote covers rejections reported by the service (4xx/5xx).
	UpstreamRemote UpstreamErrorKind = "remote"
	// UpstreamMalformed covers responses that could not be decoded.
	UpstreamMalformed UpstreamErrorKind = "malformed"
)

// UpstreamError wraps a failed content repository call.
type UpstreamError struct {
	Op   string
	Kind UpstreamErrorKind
	Err  error
}

// NewUpstreamError classifies err. The classification only refines logs and
// traces; callers see the underlying message either way.
func NewUpstreamError(op string, err error) *UpstreamError {
	return &UpstreamError{
		Op:   op,
		Kind: ClassifyUpstreamError(err),
		Err:  err,
	}
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message())
}

// Unwrap returns the underlying error.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Message returns a human-readable, never empty, description of the failure.
func (e *UpstreamError) Message() string {
	if e.Err == nil {
		return "unknown error"
	}
	if msg := e.Err.Error(); msg != "" {
		return msg
	}
	return fmt.Sprintf("%T", e.Err)
}

// ClassifyUpstreamError inspects the error chain of a failed upstream call.
func ClassifyUpstreamError(err error) UpstreamErrorKind {
	var (
		netErr    net.Error
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return UpstreamNetwork
	case errors.As(err, &netErr):
		return UpstreamNetwork
	case errors.Is(err, ErrEmptyResponse), errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return UpstreamMalformed
	default:
		return UpstreamRemote
	}
}
