package model

import (
	"context"

	"github.com/convoloop/convoloop/core"
)

// ToolDefinition declaratively exposes a lookup tool to the reasoning
// engine. Every tool takes a single text query, so no parameter schema is
// carried here; adapters project the fixed {query: string} shape for
// providers that require one.
type ToolDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToolCall is a tool invocation request surfaced by the reasoning engine.
// Unified across providers so the orchestrator needs no per-provider
// branching.
type ToolCall struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Query string `json:"query"`
}

// Request captures the normalized generation input: committed prior turns,
// the current question, and the steps taken so far in the in-progress turn
// (tool observations the engine should reason over before answering).
type Request struct {
	Instructions string           `json:"instructions"`
	History      []core.Turn      `json:"history"`
	Question     string           `json:"question"`
	Steps        []core.Step      `json:"steps,omitempty"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
}

// Response is one element of a generation segment: either an answer token or
// a tool call request. A segment ends when the response channel closes; if a
// ToolCall was emitted the orchestrator dispatches it and generates again
// with the observation appended to Request.Steps.
type Response struct {
	Token    string    `json:"token,omitempty"`
	ToolCall *ToolCall `json:"tool_call,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", ...
}

// Model is the minimal interface the orchestrator requires to drive
// generation. Generate must tolerate zero or more tool call requests
// interleaved with token emission and close both channels when the segment
// completes or fails.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}
