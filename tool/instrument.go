package tool

import (
	"context"
	"errors"
	"time"

	"github.com/convoloop/convoloop/observability"
)

// resultPreview bounds the result detail carried in end events.
const resultPreview = 256

// Instrumented wraps a Tool so every invocation emits a start event before
// dispatch and exactly one end-or-error event after completion, carrying the
// tool name, query and truncated result or error detail. It also applies a
// per-call timeout when configured.
type Instrumented struct {
	tool    Tool
	sink    observability.Sink
	timeout time.Duration
}

// Instrument wraps t with event emission and an optional per-call timeout
// (zero disables the timeout).
func Instrument(t Tool, sink observability.Sink, timeout time.Duration) *Instrumented {
	return &Instrumented{tool: t, sink: sink, timeout: timeout}
}

// Name returns the wrapped tool's name.
func (i *Instrumented) Name() string { return i.tool.Name() }

// Description returns the wrapped tool's description.
func (i *Instrumented) Description() string { return i.tool.Description() }

// Invoke dispatches to the wrapped tool. Errors are normalized to *ToolError
// (deadline expiry maps to CodeTimeout) so downstream handling is uniform.
func (i *Instrumented) Invoke(ctx context.Context, query string) (string, error) {
	i.sink.Emit(observability.NewLogEvent(observability.SeverityInfo, "tool.invoke.start", map[string]any{
		"tool":  i.tool.Name(),
		"query": query,
	}))

	// An external call already in flight runs to completion even when the
	// caller abandons the stream; the per-call timeout is the only bound on
	// the dispatch.
	ctx = context.WithoutCancel(ctx)
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := i.tool.Invoke(ctx, query)
	if err != nil {
		terr := normalize(i.tool.Name(), err)
		i.sink.Emit(observability.NewLogEvent(observability.SeverityError, "tool.invoke.error", map[string]any{
			"tool":        i.tool.Name(),
			"query":       query,
			"error":       terr.Error(),
			"duration_ms": time.Since(start).Milliseconds(),
		}))
		return "", terr
	}

	i.sink.Emit(observability.NewLogEvent(observability.SeverityInfo, "tool.invoke.end", map[string]any{
		"tool":        i.tool.Name(),
		"query":       query,
		"result":      truncate(result, resultPreview),
		"duration_ms": time.Since(start).Milliseconds(),
	}))
	return result, nil
}

// normalize maps any error to a *ToolError, preserving ones already typed.
func normalize(tool string, err error) *ToolError {
	var terr *ToolError
	if errors.As(err, &terr) {
		return terr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewToolError(tool, err.Error(), CodeTimeout)
	}
	return NewToolError(tool, err.Error(), CodeExecution)
}

// truncate shortens s to at most n runes with an ellipsis marker.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
