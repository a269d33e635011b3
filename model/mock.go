package model

import (
	"context"
	"strings"
	"sync"
)

// Segment scripts one generation segment of the MockModel: tokens to emit,
// an optional trailing tool call, or an error terminating the segment.
type Segment struct {
	Tokens   []string
	ToolCall *ToolCall
	Err      error
}

// TokenSegment scripts a plain token emission segment.
func TokenSegment(tokens ...string) Segment { return Segment{Tokens: tokens} }

// ToolCallSegment scripts a segment that requests a tool invocation.
func ToolCallSegment(id, name, query string, tokens ...string) Segment {
	return Segment{Tokens: tokens, ToolCall: &ToolCall{ID: id, Name: name, Query: query}}
}

// ErrorSegment scripts a segment that fails.
func ErrorSegment(err error) Segment { return Segment{Err: err} }

// MockModel is a lightweight in-memory Model useful for tests and examples.
// Each question is scripted as an ordered list of segments; consecutive
// Generate calls for the same question consume consecutive segments, matching
// the orchestrator's generate → tool → generate loop. Unscripted questions
// stream a canned word-by-word reply.
type MockModel struct {
	mu      sync.Mutex
	info    Info
	scripts map[string][]Segment
	cursor  map[string]int
}

// NewMockModel constructs an empty MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:    Info{Name: name, Provider: "mock"},
		scripts: make(map[string][]Segment),
		cursor:  make(map[string]int),
	}
}

// Script registers the ordered generation segments for a question.
func (m *MockModel) Script(question string, segments ...Segment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[question] = segments
	m.cursor[question] = 0
}

func (m *MockModel) next(question string) Segment {
	m.mu.Lock()
	defer m.mu.Unlock()

	segments, ok := m.scripts[question]
	if !ok || m.cursor[question] >= len(segments) {
		reply := "Mock response to: " + question
		var tokens []string
		for i, w := range strings.Fields(reply) {
			if i > 0 {
				w = " " + w
			}
			tokens = append(tokens, w)
		}
		return Segment{Tokens: tokens}
	}

	seg := segments[m.cursor[question]]
	m.cursor[question]++
	return seg
}

// Generate implements Model by replaying the next scripted segment.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	out := make(chan Response, 16)
	errCh := make(chan error, 1)

	seg := m.next(req.Question)

	go func() {
		defer close(out)
		defer close(errCh)

		for _, tok := range seg.Tokens {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case out <- Response{Token: tok}:
			}
		}

		if seg.Err != nil {
			errCh <- seg.Err
			return
		}

		if seg.ToolCall != nil {
			call := *seg.ToolCall
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
			case out <- Response{ToolCall: &call}:
			}
		}
	}()

	return out, errCh
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
