// Package openai provides a reasoning engine adapter for the OpenAI Chat
// Completions API with streaming and tool calling. Text deltas are forwarded
// as tokens; tool call deltas are aggregated and surfaced as a single tool
// call request when the segment finishes.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/tidwall/gjson"

	"github.com/convoloop/convoloop/core"
	"github.com/convoloop/convoloop/model"
)

// aggCall aggregates partial tool call streaming deltas (id, name, arguments)
// so a complete call can be reconstructed when the finish reason arrives.
type aggCall struct{ id, name, args string }

// Options configure the OpenAI adapter. Fields mirror a minimal subset of
// Chat Completion parameters; extend via functional options without breaking
// callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model
// interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new OpenAI model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	client := openai.NewClient()
	return NewModelFromClient(&client, optFns...)
}

// NewModelFromClient creates a new OpenAI model from an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements model.Model via streaming chat completion.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		params := m.buildParams(req)
		stream := m.client.Chat.Completions.NewStreaming(ctx, params)

		toolAgg := map[int64]*aggCall{}

		for stream.Next() {
			ck := stream.Current()
			for _, ch := range ck.Choices {
				if ch.Delta.Content != "" {
					select {
					case <-ctx.Done():
						errCh <- ctx.Err()
						return
					case out <- model.Response{Token: ch.Delta.Content}:
					}
				}

				for _, tc := range ch.Delta.ToolCalls {
					ac, ok := toolAgg[tc.Index]
					if !ok {
						ac = &aggCall{}
						toolAgg[tc.Index] = ac
					}
					if tc.ID != "" {
						ac.id = tc.ID
					}
					if tc.Function.Name != "" {
						ac.name = tc.Function.Name
					}
					if tc.Function.Arguments != "" {
						ac.args += tc.Function.Arguments
					}
				}

				if ch.FinishReason != "" {
					for _, ac := range toolAgg {
						call := &model.ToolCall{
							ID:    ac.id,
							Name:  ac.name,
							Query: gjson.Get(ac.args, "query").String(),
						}
						select {
						case <-ctx.Done():
							errCh <- ctx.Err()
							return
						case out <- model.Response{ToolCall: call}:
						}
					}
					toolAgg = map[int64]*aggCall{}
				}
			}
		}

		if err := stream.Err(); err != nil {
			errCh <- fmt.Errorf("openai streaming error: %w", err)
		}
	}()

	return out, errCh
}

// buildParams assembles the request including replayed history and the fixed
// single-query tool definitions.
func (m *Model) buildParams(req model.Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}

	if len(req.Tools) == 0 {
		return params
	}

	tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
	for i, t := range req.Tools {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters: openai.FunctionParameters{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{
							"type":        "string",
							"description": "The lookup query",
						},
					},
					"required": []string{"query"},
				},
			},
		}
	}
	params.Tools = tools
	return params
}

// buildMessages replays committed turns and in-progress steps as chat
// messages. Tool invocations become assistant tool_calls followed by tool
// role responses keyed by the originating call id.
func buildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion

	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}

	appendSteps := func(steps []core.Step) {
		for _, s := range steps {
			if !s.IsToolCall() {
				continue
			}
			args, _ := json.Marshal(map[string]string{"query": s.Query})
			messages = append(messages,
				openai.ChatCompletionMessageParamUnion{OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role: "assistant",
					ToolCalls: []openai.ChatCompletionMessageToolCallParam{{
						ID:   s.CallID,
						Type: "function",
						Function: openai.ChatCompletionMessageToolCallFunctionParam{
							Name:      s.Tool,
							Arguments: string(args),
						},
					}},
				}},
				openai.ToolMessage(s.Observation, s.CallID),
			)
		}
	}

	for _, turn := range req.History {
		messages = append(messages, openai.UserMessage(turn.Question))
		appendSteps(turn.Steps)
		if turn.Answer != "" {
			messages = append(messages, openai.AssistantMessage(turn.Answer))
		}
	}

	messages = append(messages, openai.UserMessage(req.Question))
	appendSteps(req.Steps)

	return messages
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "openai"}
}
