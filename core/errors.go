package core

import "fmt"

// EngineError wraps a reasoning engine failure. Engine errors are fatal to
// the turn: the checkpoint is not updated and the error terminates the token
// stream.
type EngineError struct {
	Stage string // "generate", "step_limit", ...
	Err   error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine error [%s]: %v", e.Stage, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

// NewEngineError creates an EngineError for the given lifecycle stage.
func NewEngineError(stage string, err error) *EngineError {
	return &EngineError{Stage: stage, Err: err}
}

// MemoryError wraps a checkpoint load or save failure. Load failures degrade
// to empty state with a warning; save failures are fatal to the turn's
// durability guarantee and surface to the caller even though tokens may
// already have streamed.
type MemoryError struct {
	Op             string // "load" or "save"
	ConversationID string
	Err            error
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("memory error [%s] conversation %s: %v", e.Op, e.ConversationID, e.Err)
}

func (e *MemoryError) Unwrap() error { return e.Err }

// NewMemoryError creates a MemoryError for the given store operation.
func NewMemoryError(op, conversationID string, err error) *MemoryError {
	return &MemoryError{Op: op, ConversationID: conversationID, Err: err}
}
