package memory

import (
	"context"

	"github.com/convoloop/convoloop/core"
)

// Store persists and retrieves conversation checkpoints.
//
// Contract:
//   - Load for an unknown identifier returns (nil, nil): absence is not an
//     error, and the orchestrator treats it as an empty-history conversation.
//   - Save is atomic per conversation: a reader never observes a partially
//     written checkpoint.
//   - Concurrent Save calls for one identifier are serialized with
//     last-committed-wins; the orchestrator's at-most-one-turn-in-flight
//     guard makes this a safety net rather than the primary mechanism.
type Store interface {
	Load(ctx context.Context, conversationID string) (*core.Checkpoint, error)
	Save(ctx context.Context, checkpoint *core.Checkpoint) error
}
