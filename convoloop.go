// Package convoloop provides a high-level façade over the turn orchestrator
// and its supporting services (conversation memory, tools, observability).
// Most applications interact with this package by:
//  1. Creating a Convoloop via New() around a reasoning model (optionally
//     overriding the default in-memory store and log sink)
//  2. Registering lookup tools
//  3. Streaming turns asynchronously (Stream) or synchronously (Ask)
//
// The façade delegates orchestration to engine.Engine while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a durable checkpoint store
// and a structured log sink.
package convoloop

import (
	"context"
	"strings"
	"time"

	"github.com/convoloop/convoloop/engine"
	"github.com/convoloop/convoloop/memory"
	"github.com/convoloop/convoloop/model"
	"github.com/convoloop/convoloop/observability"
	"github.com/convoloop/convoloop/tool"
)

// Options configures the Convoloop instance.
type Options struct {
	// Store persists conversation checkpoints (defaults to in-memory).
	Store memory.Store

	// Sink receives lifecycle events. When nil, a JSON slog sink wrapped in
	// an AsyncSink is installed so a slow log backend never stalls streaming.
	Sink observability.Sink

	// Tools available to the reasoning engine.
	Tools []tool.Tool

	// Instructions is the system prompt prepended to every generation.
	Instructions string

	// MaxSteps bounds the reasoning loop per turn.
	MaxSteps int

	// ToolTimeout bounds each tool invocation.
	ToolTimeout time.Duration
}

// Convoloop is the high-level façade aggregating the orchestrator and its
// services.
type Convoloop struct {
	engine *engine.Engine
	async  *observability.AsyncSink
}

// New creates a Convoloop around the given reasoning model. Any unset service
// is initialized with a safe default.
func New(m model.Model, optFns ...func(o *Options)) *Convoloop {
	opts := Options{
		Store: memory.NewInMemoryStore(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var async *observability.AsyncSink
	if opts.Sink == nil {
		async = observability.NewAsyncSink(observability.NewSlogSink())
		opts.Sink = async
	}

	e := engine.New(m, func(o *engine.Options) {
		o.Store = opts.Store
		o.Sink = opts.Sink
		o.Tools = tool.NewRegistry(opts.Tools...)
		o.Instructions = opts.Instructions
		if opts.MaxSteps > 0 {
			o.MaxSteps = opts.MaxSteps
		}
		if opts.ToolTimeout > 0 {
			o.ToolTimeout = opts.ToolTimeout
		}
	})

	return &Convoloop{engine: e, async: async}
}

// Stream runs one turn for the conversation, streaming answer tokens as they
// are produced. The token channel closes after the turn's checkpoint has been
// committed. See engine.Engine.Stream for the full channel contract.
func (c *Convoloop) Stream(ctx context.Context, question, conversationID string) (<-chan string, <-chan error, error) {
	return c.engine.Stream(ctx, question, conversationID)
}

// Ask is a synchronous helper that drains the token stream and returns the
// assembled answer.
func (c *Convoloop) Ask(ctx context.Context, question, conversationID string) (string, error) {
	tokens, errs, err := c.Stream(ctx, question, conversationID)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for tok := range tokens {
		sb.WriteString(tok)
	}
	if err := <-errs; err != nil {
		return sb.String(), err
	}
	return sb.String(), nil
}

// Close flushes the default async log sink, when one was installed. Callers
// providing their own sink manage its lifecycle themselves.
func (c *Convoloop) Close() {
	if c.async != nil {
		c.async.Close()
	}
}
