// Package anthropic provides a reasoning engine adapter for the Anthropic
// Claude Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/tidwall/gjson"

	"github.com/convoloop/convoloop/core"
	"github.com/convoloop/convoloop/model"
)

// Options configures the Anthropic adapter (model id, temperature, max
// tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Model wraps the Anthropic Messages API behind the generic model.Model
// interface. Generation is non-streaming: the final text is emitted as a
// single token response, tool_use blocks become tool call requests.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// NewModel creates a new Anthropic model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new Anthropic model from an existing client.
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{client: client, opts: opts}
}

// Generate implements model.Model by issuing one Messages API call and
// adapting its content blocks into token / tool call responses.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		params := anthropic.MessageNewParams{
			Model:       m.opts.Model,
			Messages:    buildMessages(req),
			MaxTokens:   m.opts.MaxTokens,
			Temperature: anthropic.Float(m.opts.Temperature),
		}

		if req.Instructions != "" {
			params.System = []anthropic.TextBlockParam{{Text: req.Instructions}}
		}

		if len(req.Tools) > 0 {
			params.Tools = buildTools(req.Tools)
		}

		resp, err := m.client.Messages.New(ctx, params)
		if err != nil {
			errCh <- fmt.Errorf("anthropic api error: %w", err)
			return
		}

		for _, block := range resp.Content {
			switch block.Type {
			case "text":
				textBlock := block.AsText()
				if textBlock.Text == "" {
					continue
				}
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case out <- model.Response{Token: textBlock.Text}:
				}
			case "tool_use":
				toolBlock := block.AsToolUse()
				call := &model.ToolCall{
					ID:    toolBlock.ID,
					Name:  toolBlock.Name,
					Query: queryFromInput(toolBlock.Input),
				}
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case out <- model.Response{ToolCall: call}:
				}
			}
		}
	}()

	return out, errCh
}

// queryFromInput extracts the single query argument from a tool_use input.
func queryFromInput(input any) string {
	if input == nil {
		return ""
	}
	data, err := json.Marshal(input)
	if err != nil {
		return ""
	}
	return gjson.GetBytes(data, "query").String()
}

// buildMessages replays committed turns and in-progress steps as Anthropic
// messages. Tool invocations become assistant tool_use blocks answered by
// user tool_result blocks, per the Messages API turn protocol.
func buildMessages(req model.Request) []anthropic.MessageParam {
	var messages []anthropic.MessageParam

	appendSteps := func(steps []core.Step) {
		for _, s := range steps {
			if !s.IsToolCall() {
				continue
			}
			input := map[string]any{"query": s.Query}
			messages = append(messages,
				anthropic.NewAssistantMessage(anthropic.NewToolUseBlock(s.CallID, input, s.Tool)),
				anthropic.NewUserMessage(anthropic.NewToolResultBlock(s.CallID, s.Observation, s.Failed)),
			)
		}
	}

	for _, turn := range req.History {
		messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Question)))
		appendSteps(turn.Steps)
		if turn.Answer != "" {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Answer)))
		}
	}

	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Question)))
	appendSteps(req.Steps)

	return messages
}

// buildTools projects the fixed single-query schema for every lookup tool.
func buildTools(tools []model.ToolDefinition) []anthropic.ToolUnionParam {
	anthropicTools := make([]anthropic.ToolUnionParam, len(tools))

	for i, t := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
			Properties: map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The lookup query",
				},
			},
			Required: []string{"query"},
		}
		anthropicTools[i] = anthropic.ToolUnionParamOfTool(inputSchema, t.Name)
	}

	return anthropicTools
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: string(m.opts.Model), Provider: "anthropic"}
}
