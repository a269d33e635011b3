package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convoloop/convoloop/core"
)

func sealedTurn(q, a string) *core.Turn {
	t := core.NewTurn(q)
	t.AddStep(core.NewTokenStep(a))
	t.Seal(a)
	return t
}

func TestInMemoryStoreLoadAbsent(t *testing.T) {
	store := NewInMemoryStore()
	cp, err := store.Load(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Nil(t, cp)
}

func TestInMemoryStoreSaveLoadRoundtrip(t *testing.T) {
	store := NewInMemoryStore()
	conv := core.NewConversation("c1")
	conv.AppendTurn(sealedTurn("q1", "a1"))

	require.NoError(t, store.Save(context.Background(), core.NewCheckpoint(conv)))

	cp, err := store.Load(context.Background(), "c1")
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, 1, cp.Revision)
	assert.Equal(t, "a1", cp.State.Turns[0].Answer)
}

func TestInMemoryStoreIsolation(t *testing.T) {
	store := NewInMemoryStore()
	conv := core.NewConversation("c1")
	conv.AppendTurn(sealedTurn("q1", "a1"))
	require.NoError(t, store.Save(context.Background(), core.NewCheckpoint(conv)))

	// Mutating a loaded checkpoint must not affect committed state.
	cp, err := store.Load(context.Background(), "c1")
	require.NoError(t, err)
	cp.State.Turns[0].Answer = "mutated"

	again, err := store.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "a1", again.State.Turns[0].Answer)
}

func TestInMemoryStoreLastCommittedWins(t *testing.T) {
	store := NewInMemoryStore()

	conv := core.NewConversation("c1")
	conv.AppendTurn(sealedTurn("q1", "a1"))
	require.NoError(t, store.Save(context.Background(), core.NewCheckpoint(conv)))

	conv.AppendTurn(sealedTurn("q2", "a2"))
	require.NoError(t, store.Save(context.Background(), core.NewCheckpoint(conv)))

	cp, err := store.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, cp.Revision)
}

func TestInMemoryStoreConcurrentSaves(t *testing.T) {
	store := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conv := core.NewConversation("c1")
			conv.AppendTurn(sealedTurn("q", "a"))
			assert.NoError(t, store.Save(context.Background(), core.NewCheckpoint(conv)))
		}()
	}
	wg.Wait()

	cp, err := store.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, cp.Revision)
	assert.Equal(t, 1, store.Len())
}

func TestInMemoryStoreRejectsEmptyID(t *testing.T) {
	store := NewInMemoryStore()
	err := store.Save(context.Background(), &core.Checkpoint{})
	assert.Error(t, err)
}
