package stream

// Hooks is the lifecycle contract the orchestrator invokes at defined points
// of a turn. Any implementation of the four-method contract can be
// substituted; the orchestrator never depends on a concrete interceptor.
//
// Implementations must be non-blocking with respect to the reasoning loop:
// mirroring an event to a slow sink must not delay token delivery. OnToken
// returns an error only when the caller-visible stream is gone (context
// cancelled); the orchestrator treats that as turn abandonment.
type Hooks interface {
	// OnTurnStart fires exactly once when the orchestrator begins a turn.
	OnTurnStart(metadata map[string]any)

	// OnToken forwards one generated token to the caller in arrival order.
	// It never drops, reorders, or deduplicates tokens.
	OnToken(token string) error

	// OnTurnEnd fires exactly once when the turn is sealed.
	OnTurnEnd(metadata map[string]any)

	// OnToolCall fires after each tool invocation with its result or error.
	OnToolCall(tool, query, result string, err error)
}
