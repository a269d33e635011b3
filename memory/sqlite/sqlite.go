// Package sqlite provides a durable checkpoint store backed by SQLite via
// the pure-Go modernc.org/sqlite driver. Each conversation occupies one row;
// a Save replaces the row inside a transaction so readers only ever observe
// fully committed checkpoints.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/convoloop/convoloop/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	conversation_id TEXT PRIMARY KEY,
	revision        INTEGER NOT NULL,
	committed_at    TEXT NOT NULL,
	state           BLOB NOT NULL
);
`

// Store is a Store implementation persisting checkpoints to a SQLite file.
// SQLite serializes writers per database, so concurrent saves for one
// conversation resolve to last-committed-wins.
type Store struct {
	db *sql.DB
}

// Open creates (or opens) the checkpoint database at path and applies the
// schema. Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("checkpoint database ping failed: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply checkpoint schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Load returns the last committed checkpoint, or (nil, nil) when the
// conversation has never been saved.
func (s *Store) Load(ctx context.Context, conversationID string) (*core.Checkpoint, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT state FROM checkpoints WHERE conversation_id = ?",
		conversationID,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %s: %w", conversationID, err)
	}

	cp, err := core.UnmarshalCheckpoint(blob)
	if err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", conversationID, err)
	}
	return cp, nil
}

// Save upserts the checkpoint row in a transaction (last-committed-wins).
func (s *Store) Save(ctx context.Context, checkpoint *core.Checkpoint) error {
	if checkpoint == nil || checkpoint.ConversationID == "" {
		return fmt.Errorf("checkpoint missing conversation id")
	}

	blob, err := checkpoint.Marshal()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin checkpoint tx: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO checkpoints (conversation_id, revision, committed_at, state)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(conversation_id) DO UPDATE SET
			revision = excluded.revision,
			committed_at = excluded.committed_at,
			state = excluded.state`,
		checkpoint.ConversationID,
		checkpoint.Revision,
		checkpoint.Committed.Format(time.RFC3339Nano),
		blob,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("save checkpoint %s: %w", checkpoint.ConversationID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit checkpoint %s: %w", checkpoint.ConversationID, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }
