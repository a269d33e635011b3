package core

import (
	"time"

	"github.com/google/uuid"
)

// NewID generates a new unique identifier for turns and tool calls.
func NewID() string { return uuid.NewString() }

// Turn is one question/answer exchange. It is created when the orchestrator
// begins processing a question and sealed when streaming completes. Failed
// turns are never appended to a conversation, so a persisted turn always has
// both timestamps set.
type Turn struct {
	ID       string    `json:"id"`
	Question string    `json:"question"`
	Steps    []Step    `json:"steps"`
	Answer   string    `json:"answer"`
	Started  time.Time `json:"started"`
	Ended    time.Time `json:"ended"`
}

// NewTurn starts a new turn for the given question.
func NewTurn(question string) *Turn {
	return &Turn{ID: NewID(), Question: question, Started: time.Now().UTC()}
}

// AddStep appends a step to the turn's ordered trace.
func (t *Turn) AddStep(s Step) { t.Steps = append(t.Steps, s) }

// Seal marks the turn complete with the assembled final answer.
func (t *Turn) Seal(answer string) {
	t.Answer = answer
	t.Ended = time.Now().UTC()
}

// ToolSteps returns the turn's tool invocation steps preserving order.
func (t *Turn) ToolSteps() []Step {
	var steps []Step
	for _, s := range t.Steps {
		if s.IsToolCall() {
			steps = append(steps, s)
		}
	}
	return steps
}

// Clone returns a deep copy of the turn.
func (t *Turn) Clone() *Turn {
	c := *t
	c.Steps = make([]Step, len(t.Steps))
	copy(c.Steps, t.Steps)
	return &c
}

// Conversation owns an ordered sequence of turns keyed by an opaque
// identifier. It is created implicitly on first use of an identifier and is
// never deleted by this core.
type Conversation struct {
	ID      string    `json:"id"`
	Turns   []Turn    `json:"turns"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// NewConversation creates an empty conversation for the given identifier.
func NewConversation(id string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{ID: id, Turns: []Turn{}, Created: now, Updated: now}
}

// AppendTurn appends a sealed turn and bumps the Updated timestamp.
func (c *Conversation) AppendTurn(t *Turn) {
	c.Turns = append(c.Turns, *t.Clone())
	c.Updated = time.Now().UTC()
}

// History returns a defensive copy of the committed turns.
func (c *Conversation) History() []Turn {
	turns := make([]Turn, len(c.Turns))
	for i := range c.Turns {
		turns[i] = *c.Turns[i].Clone()
	}
	return turns
}

// Len returns the number of committed turns.
func (c *Conversation) Len() int { return len(c.Turns) }

// Clone returns a deep copy of the conversation safe for independent mutation.
func (c *Conversation) Clone() *Conversation {
	clone := &Conversation{ID: c.ID, Created: c.Created, Updated: c.Updated}
	clone.Turns = c.History()
	return clone
}
