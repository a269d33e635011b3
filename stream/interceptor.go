package stream

import (
	"context"

	"github.com/convoloop/convoloop/observability"
)

// resultPreview bounds the tool result detail mirrored into tool call events.
const resultPreview = 256

// Interceptor is the standard Hooks implementation. It forwards tokens into
// the caller's channel (respecting context cancellation, which signals that
// the caller abandoned consumption) and mirrors every lifecycle point as a
// LogEvent. Per-token events carry Debug severity: callers needing lower log
// volume filter at the sink, not here.
type Interceptor struct {
	ctx            context.Context
	out            chan<- string
	sink           observability.Sink
	conversationID string
	turnID         string
	seq            int
}

// NewInterceptor builds an interceptor for one turn. The sink is expected to
// be non-blocking (wrap it in an AsyncSink for slow backends).
func NewInterceptor(
	ctx context.Context,
	out chan<- string,
	sink observability.Sink,
	conversationID, turnID string,
) *Interceptor {
	return &Interceptor{
		ctx:            ctx,
		out:            out,
		sink:           sink,
		conversationID: conversationID,
		turnID:         turnID,
	}
}

func (i *Interceptor) meta(extra map[string]any) map[string]any {
	md := map[string]any{
		"conversation_id": i.conversationID,
		"turn_id":         i.turnID,
	}
	for k, v := range extra {
		md[k] = v
	}
	return md
}

// OnTurnStart mirrors exactly one turn-start event.
func (i *Interceptor) OnTurnStart(metadata map[string]any) {
	i.sink.Emit(observability.NewLogEvent(observability.SeverityInfo, "turn.start", i.meta(metadata)))
}

// OnToken delivers the token to the caller and mirrors one token event. It
// returns the context error when the caller has abandoned the stream.
func (i *Interceptor) OnToken(token string) error {
	// Checked up front so cancellation wins even when the caller's channel
	// still has buffer capacity.
	if err := i.ctx.Err(); err != nil {
		return err
	}

	select {
	case <-i.ctx.Done():
		return i.ctx.Err()
	case i.out <- token:
	}

	i.seq++
	i.sink.Emit(observability.NewLogEvent(observability.SeverityDebug, "turn.token", i.meta(map[string]any{
		"token": token,
		"seq":   i.seq,
	})))
	return nil
}

// OnTurnEnd mirrors exactly one turn-end event.
func (i *Interceptor) OnTurnEnd(metadata map[string]any) {
	i.sink.Emit(observability.NewLogEvent(observability.SeverityInfo, "turn.end", i.meta(metadata)))
}

// OnToolCall mirrors a tool invocation outcome.
func (i *Interceptor) OnToolCall(tool, query, result string, err error) {
	md := i.meta(map[string]any{
		"tool":  tool,
		"query": query,
	})

	if err != nil {
		md["error"] = err.Error()
		i.sink.Emit(observability.NewLogEvent(observability.SeverityError, "turn.tool_call.error", md))
		return
	}

	md["result"] = Truncate(result, resultPreview)
	i.sink.Emit(observability.NewLogEvent(observability.SeverityInfo, "turn.tool_call", md))
}

// Truncate shortens s to at most n runes, appending an ellipsis marker when
// anything was cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
