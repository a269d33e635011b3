package anthropic

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convoloop/convoloop/core"
	"github.com/convoloop/convoloop/model"
)

func TestQueryFromInput(t *testing.T) {
	assert.Equal(t, "machine learning", queryFromInput(map[string]any{"query": "machine learning"}))
	assert.Equal(t, "", queryFromInput(map[string]any{"other": "x"}))
	assert.Equal(t, "", queryFromInput(nil))
}

func TestBuildMessagesReplaysToolSteps(t *testing.T) {
	turn := core.Turn{Question: "find videos", Answer: "Here you go."}
	turn.Steps = []core.Step{
		core.NewToolStep("call-1", "video_search", "machine learning", "Intro to ML"),
	}

	messages := buildMessages(model.Request{
		History:  []core.Turn{turn},
		Question: "which was first?",
	})

	// user question, assistant tool_use, user tool_result, assistant answer,
	// then the new question.
	require.Len(t, messages, 5)
	assert.Equal(t, anthropic.MessageParamRoleUser, messages[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, messages[1].Role)
	assert.Equal(t, anthropic.MessageParamRoleUser, messages[2].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, messages[3].Role)
	assert.Equal(t, anthropic.MessageParamRoleUser, messages[4].Role)
}

func TestBuildToolsProjectsQuerySchema(t *testing.T) {
	tools := buildTools([]model.ToolDefinition{{Name: "web_search", Description: "search the web"}})
	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].OfTool)
	assert.Equal(t, "web_search", tools[0].OfTool.Name)
	assert.Contains(t, tools[0].OfTool.InputSchema.Properties, "query")
}

func TestInfo(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test-key" })
	info := m.Info()
	assert.Equal(t, "anthropic", info.Provider)
	assert.NotEmpty(t, info.Name)
}
