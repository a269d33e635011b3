package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, out <-chan Response, errCh <-chan error) ([]Response, error) {
	t.Helper()
	var responses []Response
	for r := range out {
		responses = append(responses, r)
	}
	return responses, <-errCh
}

func TestMockModelScriptedSegments(t *testing.T) {
	m := NewMockModel("test")
	m.Script("q",
		ToolCallSegment("fc1", "web_search", "golang"),
		TokenSegment("Go", " is", " great."),
	)

	// First segment: tool call.
	out, errCh := m.Generate(context.Background(), Request{Question: "q"})
	responses, err := drain(t, out, errCh)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].ToolCall)
	assert.Equal(t, "web_search", responses[0].ToolCall.Name)
	assert.Equal(t, "golang", responses[0].ToolCall.Query)

	// Second segment: tokens in order.
	out, errCh = m.Generate(context.Background(), Request{Question: "q"})
	responses, err = drain(t, out, errCh)
	require.NoError(t, err)
	require.Len(t, responses, 3)
	assert.Equal(t, "Go", responses[0].Token)
	assert.Equal(t, " great.", responses[2].Token)
}

func TestMockModelErrorSegment(t *testing.T) {
	m := NewMockModel("test")
	boom := errors.New("model exploded")
	m.Script("q", ErrorSegment(boom))

	out, errCh := m.Generate(context.Background(), Request{Question: "q"})
	_, err := drain(t, out, errCh)
	assert.ErrorIs(t, err, boom)
}

func TestMockModelUnscriptedQuestion(t *testing.T) {
	m := NewMockModel("test")
	out, errCh := m.Generate(context.Background(), Request{Question: "hi"})
	responses, err := drain(t, out, errCh)
	require.NoError(t, err)
	require.NotEmpty(t, responses)

	var answer string
	for _, r := range responses {
		answer += r.Token
	}
	assert.Equal(t, "Mock response to: hi", answer)
}

func TestMockModelInfo(t *testing.T) {
	m := NewMockModel("test")
	assert.Equal(t, "mock", m.Info().Provider)
}
