package core

import "time"

// StepKind discriminates the closed set of step variants. A step either
// emitted answer tokens or invoked a tool and observed its result.
type StepKind string

const (
	// StepTokens records a contiguous run of answer tokens produced by the
	// reasoning engine within one generation segment.
	StepTokens StepKind = "tokens"

	// StepToolCall records a tool invocation together with its observation
	// (the tool result, or the failure folded into an observation).
	StepToolCall StepKind = "tool_call"
)

// Step is one unit of reasoning within a Turn. Steps are append-only and
// ordered; a turn's steps fully determine its replay trace.
type Step struct {
	Kind      StepKind  `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	// Token emission fields (Kind == StepTokens).
	Text string `json:"text,omitempty"`

	// Tool invocation fields (Kind == StepToolCall). CallID correlates the
	// step with the engine's tool call request so provider adapters can
	// reconstruct call/response pairs when replaying history.
	CallID      string `json:"call_id,omitempty"`
	Tool        string `json:"tool,omitempty"`
	Query       string `json:"query,omitempty"`
	Observation string `json:"observation,omitempty"`
	Failed      bool   `json:"failed,omitempty"`
}

// NewTokenStep records a run of emitted tokens as a single step.
func NewTokenStep(text string) Step {
	return Step{Kind: StepTokens, Text: text, Timestamp: time.Now().UTC()}
}

// NewToolStep records a successful tool invocation and its observation.
func NewToolStep(callID, tool, query, observation string) Step {
	return Step{
		Kind:        StepToolCall,
		CallID:      callID,
		Tool:        tool,
		Query:       query,
		Observation: observation,
		Timestamp:   time.Now().UTC(),
	}
}

// NewFailedToolStep records a failed tool invocation. The failure reason is
// folded into the observation so the reasoning engine can decide whether to
// retry, pick another tool, or answer without the result.
func NewFailedToolStep(callID, tool, query string, err error) Step {
	s := NewToolStep(callID, tool, query, "tool failed: "+err.Error())
	s.Failed = true
	return s
}

// IsToolCall reports whether the step records a tool invocation.
func (s Step) IsToolCall() bool { return s.Kind == StepToolCall }
