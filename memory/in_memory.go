package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/convoloop/convoloop/core"
)

// InMemoryStore is a volatile Store keeping checkpoints in a process-local
// map. Checkpoints are cloned on both write and read so callers can never
// mutate committed state, which also makes each Save atomic from a reader's
// point of view. Best suited to tests and ephemeral demo setups.
type InMemoryStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*core.Checkpoint
}

// NewInMemoryStore constructs an empty in-memory checkpoint store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{checkpoints: make(map[string]*core.Checkpoint)}
}

// Load returns a clone of the last committed checkpoint, or (nil, nil) when
// the identifier has never been saved.
func (s *InMemoryStore) Load(ctx context.Context, conversationID string) (*core.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	cp, ok := s.checkpoints[conversationID]
	if !ok {
		return nil, nil
	}
	return cp.Clone(), nil
}

// Save commits a clone of the checkpoint, replacing any prior one
// (last-committed-wins).
func (s *InMemoryStore) Save(ctx context.Context, checkpoint *core.Checkpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if checkpoint == nil || checkpoint.ConversationID == "" {
		return fmt.Errorf("checkpoint missing conversation id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[checkpoint.ConversationID] = checkpoint.Clone()
	return nil
}

// Len returns the number of stored conversations.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.checkpoints)
}
