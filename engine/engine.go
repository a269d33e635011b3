// Package engine implements the turn orchestrator: it drives the reason, act,
// observe loop for one question at a time per conversation, streams answer
// tokens to the caller as they are produced, records the turn as an ordered
// step trace, and commits a checkpoint of the conversation after every
// successful turn.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/convoloop/convoloop/core"
	"github.com/convoloop/convoloop/memory"
	"github.com/convoloop/convoloop/model"
	"github.com/convoloop/convoloop/observability"
	"github.com/convoloop/convoloop/stream"
	"github.com/convoloop/convoloop/tool"
)

// ErrConversationBusy is returned when a question arrives for a conversation
// that already has a turn in flight. Callers retry once the active turn's
// token channel closes.
var ErrConversationBusy = errors.New("conversation busy: a turn is already in flight")

// Options configure the engine.
type Options struct {
	// Store persists conversation checkpoints. Defaults to an in-memory store.
	Store memory.Store

	// Sink receives lifecycle events. Defaults to NoopSink; wrap slow backends
	// in an AsyncSink so emission never stalls the token path.
	Sink observability.Sink

	// Tools is the registry the reasoning engine may call into.
	Tools *tool.Registry

	// Instructions is the system prompt prepended to every generation.
	Instructions string

	// MaxSteps bounds the reasoning loop per turn. Generation segments and
	// tool invocations each count as one step.
	MaxSteps int

	// ToolTimeout bounds each tool invocation.
	ToolTimeout time.Duration

	// TokenBufferSize sets the caller-facing token channel capacity.
	TokenBufferSize int
}

// Engine orchestrates turns over a reasoning model, a tool registry and a
// checkpoint store. Safe for concurrent use across conversations; per
// conversation it admits one turn at a time.
type Engine struct {
	model model.Model
	opts  Options

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New creates an engine around the given reasoning model.
func New(m model.Model, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Store:           memory.NewInMemoryStore(),
		Sink:            observability.NoopSink{},
		Tools:           tool.NewRegistry(),
		MaxSteps:        16,
		ToolTimeout:     15 * time.Second,
		TokenBufferSize: 1,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Store == nil {
		opts.Store = memory.NewInMemoryStore()
	}
	if opts.Sink == nil {
		opts.Sink = observability.NoopSink{}
	}
	if opts.Tools == nil {
		opts.Tools = tool.NewRegistry()
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 16
	}
	if opts.TokenBufferSize <= 0 {
		opts.TokenBufferSize = 1
	}

	return &Engine{
		model:    m,
		opts:     opts,
		inflight: make(map[string]struct{}),
	}
}

// Stream runs one turn for the conversation and streams the answer tokens.
//
// Tokens arrive on the first channel in generation order; it closes when the
// turn completed and its checkpoint committed. At most one error arrives on
// the second channel, after which no more tokens follow. A synchronous error
// is returned for invalid input or when the conversation already has a turn
// in flight.
//
// Cancelling ctx abandons the turn: streaming stops, no checkpoint is
// written, and the conversation state remains whatever the last committed
// checkpoint holds.
func (e *Engine) Stream(ctx context.Context, question, conversationID string) (<-chan string, <-chan error, error) {
	if strings.TrimSpace(question) == "" {
		return nil, nil, fmt.Errorf("question must not be empty")
	}
	if conversationID == "" {
		return nil, nil, fmt.Errorf("conversation id must not be empty")
	}
	if !e.acquire(conversationID) {
		return nil, nil, ErrConversationBusy
	}

	out := make(chan string, e.opts.TokenBufferSize)
	errCh := make(chan error, 1)

	go func() {
		// Release runs before the channels close so a caller that waited for
		// the token channel to close can immediately start the next turn.
		defer close(errCh)
		defer close(out)
		defer e.release(conversationID)
		e.runTurn(ctx, question, conversationID, out, errCh)
	}()

	return out, errCh, nil
}

func (e *Engine) acquire(conversationID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inflight[conversationID]; busy {
		return false
	}
	e.inflight[conversationID] = struct{}{}
	return true
}

func (e *Engine) release(conversationID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, conversationID)
}

// runTurn executes the reasoning loop for one turn. It sends at most one
// error and never writes a checkpoint on the failure path.
func (e *Engine) runTurn(ctx context.Context, question, conversationID string, out chan<- string, errCh chan<- error) {
	conv := e.loadState(ctx, conversationID)
	turn := core.NewTurn(question)
	hooks := stream.NewInterceptor(ctx, out, e.opts.Sink, conversationID, turn.ID)

	hooks.OnTurnStart(map[string]any{
		"question": question,
		"model":    e.model.Info().Name,
	})

	var answer strings.Builder
	steps := 0

	for {
		if steps >= e.opts.MaxSteps {
			e.fail(hooks, errCh, core.NewEngineError("step_limit",
				fmt.Errorf("turn exceeded %d steps", e.opts.MaxSteps)))
			return
		}

		pending, text, err := e.generate(ctx, hooks, question, conv, turn)
		if err != nil {
			e.fail(hooks, errCh, err)
			return
		}

		if text != "" {
			turn.AddStep(core.NewTokenStep(text))
			answer.WriteString(text)
		}
		steps++

		if pending == nil {
			break
		}

		steps++
		turn.AddStep(e.invokeTool(ctx, hooks, pending))
	}

	turn.Seal(answer.String())
	conv.AppendTurn(turn)

	cp := core.NewCheckpoint(conv)
	if err := e.opts.Store.Save(ctx, cp); err != nil {
		e.fail(hooks, errCh, core.NewMemoryError("save", conversationID, err))
		return
	}

	hooks.OnTurnEnd(map[string]any{
		"steps":    len(turn.Steps),
		"revision": cp.Revision,
	})
}

// loadState restores the conversation from its last committed checkpoint.
// Load failures degrade to empty state so a corrupt or unavailable store
// never blocks new turns.
func (e *Engine) loadState(ctx context.Context, conversationID string) *core.Conversation {
	cp, err := e.opts.Store.Load(ctx, conversationID)
	if err != nil {
		e.opts.Sink.Emit(observability.NewLogEvent(observability.SeverityWarn, "memory.load.error", map[string]any{
			"conversation_id": conversationID,
			"error":           err.Error(),
		}))
		return core.NewConversation(conversationID)
	}
	if cp == nil {
		return core.NewConversation(conversationID)
	}
	return cp.State.Clone()
}

// generate runs one generation segment, forwarding tokens to the caller as
// they arrive and returning the pending tool call, if the segment requested
// one, together with the segment's concatenated text.
func (e *Engine) generate(
	ctx context.Context,
	hooks stream.Hooks,
	question string,
	conv *core.Conversation,
	turn *core.Turn,
) (*model.ToolCall, string, error) {
	req := model.Request{
		Instructions: e.opts.Instructions,
		History:      conv.History(),
		Question:     question,
		Steps:        turn.Steps,
		Tools:        e.opts.Tools.Definitions(),
	}

	respCh, genErrCh := e.model.Generate(ctx, req)

	var text strings.Builder
	var pending *model.ToolCall

	for resp := range respCh {
		if resp.Token != "" {
			if err := hooks.OnToken(resp.Token); err != nil {
				return nil, "", core.NewEngineError("stream", err)
			}
			text.WriteString(resp.Token)
		}
		if resp.ToolCall != nil {
			pending = resp.ToolCall
		}
	}

	if err := <-genErrCh; err != nil {
		return nil, "", core.NewEngineError("generate", err)
	}

	return pending, text.String(), nil
}

// invokeTool executes one requested tool call. Failures are non-fatal: they
// are folded into the step's observation so the next generation segment can
// react to them.
func (e *Engine) invokeTool(ctx context.Context, hooks stream.Hooks, call *model.ToolCall) core.Step {
	t, ok := e.opts.Tools.Get(call.Name)
	if !ok {
		err := tool.NewToolError(call.Name, "tool not registered", tool.CodeUnknownTool)
		hooks.OnToolCall(call.Name, call.Query, "", err)
		return core.NewFailedToolStep(call.ID, call.Name, call.Query, err)
	}

	inst := tool.Instrument(t, e.opts.Sink, e.opts.ToolTimeout)
	result, err := inst.Invoke(ctx, call.Query)
	hooks.OnToolCall(call.Name, call.Query, result, err)
	if err != nil {
		return core.NewFailedToolStep(call.ID, call.Name, call.Query, err)
	}
	return core.NewToolStep(call.ID, call.Name, call.Query, result)
}

// fail reports a turn-fatal error: one error event, one error on the caller's
// channel, no checkpoint.
func (e *Engine) fail(hooks stream.Hooks, errCh chan<- error, err error) {
	e.opts.Sink.Emit(observability.NewLogEvent(observability.SeverityError, "turn.error", map[string]any{
		"error": err.Error(),
	}))
	hooks.OnTurnEnd(map[string]any{"failed": true})
	errCh <- err
}
