// Package memory defines the checkpointed memory store: atomic per-conversation
// persistence of conversation state, keyed by conversation identifier. The
// in-memory implementation lives here; a durable SQLite implementation lives
// in the sqlite subpackage.
package memory
