// Package tool implements the lookup tool subsystem: a uniform
// invoke(query) -> result contract over external search capabilities, a
// static registry the orchestrator selects tools from by name, and an
// instrumentation wrapper that emits start/end/error events for every
// invocation.
package tool

import (
	"context"
	"fmt"
)

// Tool exposes one external lookup capability. Implementations must be safe
// for concurrent use and should honor context cancellation on the underlying
// call.
type Tool interface {
	// Name returns the unique identifier used in registry lookups and tool
	// call requests (snake_case recommended).
	Name() string

	// Description is provided to the reasoning engine to help it decide when
	// to use the tool.
	Description() string

	// Invoke executes the lookup with a single text query and returns a text
	// result. Failures are reported as *ToolError.
	Invoke(ctx context.Context, query string) (string, error)
}

// ToolError error codes.
const (
	CodeTimeout       = "TIMEOUT"
	CodeUpstreamError = "UPSTREAM_ERROR"
	CodeBadResponse   = "BAD_RESPONSE"
	CodeExecution     = "EXECUTION_ERROR"
	CodeUnknownTool   = "UNKNOWN_TOOL"
)

// ToolError represents a failure during tool execution. Tool failures are
// non-fatal to the orchestrator's loop: they are surfaced to the reasoning
// engine as observations.
type ToolError struct {
	Tool    string `json:"tool"`    // Name of the tool that failed
	Message string `json:"message"` // Error message
	Code    string `json:"code"`    // Error code for categorization
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
