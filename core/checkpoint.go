package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// Checkpoint is a serializable snapshot of a conversation's accumulated
// state, written after each committed turn. A checkpoint read at the start of
// turn N reflects exactly the state committed after turn N-1; partial turn
// state is never visible to a subsequent read.
type Checkpoint struct {
	ConversationID string        `json:"conversation_id"`
	Revision       int           `json:"revision"`
	Committed      time.Time     `json:"committed"`
	State          *Conversation `json:"state"`
}

// NewCheckpoint snapshots the conversation. Revision equals the number of
// committed turns, so successive checkpoints on one conversation are strictly
// increasing.
func NewCheckpoint(conv *Conversation) *Checkpoint {
	return &Checkpoint{
		ConversationID: conv.ID,
		Revision:       conv.Len(),
		Committed:      time.Now().UTC(),
		State:          conv.Clone(),
	}
}

// Clone returns a deep copy of the checkpoint.
func (c *Checkpoint) Clone() *Checkpoint {
	clone := *c
	if c.State != nil {
		clone.State = c.State.Clone()
	}
	return &clone
}

// Marshal serializes the checkpoint to its opaque persisted form.
func (c *Checkpoint) Marshal() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal checkpoint %s: %w", c.ConversationID, err)
	}
	return data, nil
}

// UnmarshalCheckpoint decodes a checkpoint from its persisted form.
func UnmarshalCheckpoint(data []byte) (*Checkpoint, error) {
	var c Checkpoint
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	return &c, nil
}
