package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convoloop/convoloop/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "checkpoints.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func checkpointWithTurns(id string, turns ...string) *core.Checkpoint {
	conv := core.NewConversation(id)
	for _, q := range turns {
		turn := core.NewTurn(q)
		turn.AddStep(core.NewTokenStep("answer to " + q))
		turn.Seal("answer to " + q)
		conv.AppendTurn(turn)
	}
	return core.NewCheckpoint(conv)
}

func TestStoreLoadAbsent(t *testing.T) {
	store := openTestStore(t)
	cp, err := store.Load(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Nil(t, cp)
}

func TestStoreSaveLoadRoundtrip(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Save(context.Background(), checkpointWithTurns("c1", "q1")))

	cp, err := store.Load(context.Background(), "c1")
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, "c1", cp.ConversationID)
	assert.Equal(t, 1, cp.Revision)
	require.Len(t, cp.State.Turns, 1)
	assert.Equal(t, "answer to q1", cp.State.Turns[0].Answer)
}

func TestStoreUpsertLastCommittedWins(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Save(context.Background(), checkpointWithTurns("c1", "q1")))
	require.NoError(t, store.Save(context.Background(), checkpointWithTurns("c1", "q1", "q2")))

	cp, err := store.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, cp.Revision)
	assert.Len(t, cp.State.Turns, 2)
}

func TestStoreConversationsAreIndependent(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Save(context.Background(), checkpointWithTurns("c1", "q1")))
	require.NoError(t, store.Save(context.Background(), checkpointWithTurns("c2", "q1", "q2")))

	cp1, err := store.Load(context.Background(), "c1")
	require.NoError(t, err)
	cp2, err := store.Load(context.Background(), "c2")
	require.NoError(t, err)
	assert.Equal(t, 1, cp1.Revision)
	assert.Equal(t, 2, cp2.Revision)
}

func TestStoreRejectsEmptyID(t *testing.T) {
	store := openTestStore(t)
	assert.Error(t, store.Save(context.Background(), &core.Checkpoint{}))
}
