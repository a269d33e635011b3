package convoloop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convoloop/convoloop/internal/testutil"
	"github.com/convoloop/convoloop/memory"
	"github.com/convoloop/convoloop/model"
)

func TestAsk(t *testing.T) {
	m := model.NewMockModel("test")
	m.Script("hello", model.TokenSegment("Hi", " there!"))

	sink := testutil.NewCaptureSink()
	cl := New(m, func(o *Options) { o.Sink = sink })
	defer cl.Close()

	answer, err := cl.Ask(context.Background(), "hello", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Hi there!", answer)

	assert.Equal(t, 1, sink.Count("turn.start"))
	assert.Equal(t, 1, sink.Count("turn.end"))
}

func TestStreamAcrossTurns(t *testing.T) {
	m := model.NewMockModel("test")
	m.Script("what is Go?", model.TokenSegment("A programming language."))
	m.Script("who made it?", model.TokenSegment("Google engineers."))

	store := memory.NewInMemoryStore()
	cl := New(m, func(o *Options) { o.Store = store })
	defer cl.Close()

	first, err := cl.Ask(context.Background(), "what is Go?", "c1")
	require.NoError(t, err)
	assert.Equal(t, "A programming language.", first)

	second, err := cl.Ask(context.Background(), "who made it?", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Google engineers.", second)

	cp, err := store.Load(context.Background(), "c1")
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, 2, cp.Revision)
	assert.Equal(t, "what is Go?", cp.State.Turns[0].Question)
	assert.Equal(t, "who made it?", cp.State.Turns[1].Question)
}

func TestCloseWithDefaultSink(t *testing.T) {
	m := model.NewMockModel("test")
	cl := New(m)

	_, err := cl.Ask(context.Background(), "anything", "c1")
	require.NoError(t, err)
	cl.Close() // flushes the default async sink without deadlock
}
