package transcript

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Store persists the most recent transcript per workspace together with the
// last-lockdown/last-reopen stamps the scheduler's skip logic reads.
// Workspaces are mirrored lazily: the first save or stamp creates the row.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save replaces the workspace's transcript and stamps last_lockdown_at with
// the transcript's completion time.
func (s *Store) Save(ctx context.Context, t *Transcript) error {
	if t == nil || t.WorkspaceID == "" {
		return fmt.Errorf("transcript workspace id is empty")
	}
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	completedAt := t.Meta.CompletedAt.UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx, `
INSERT INTO workspace_state(workspace_id, last_lockdown_at, transcript, updated_at)
VALUES(?, ?, ?, ?)
ON CONFLICT(workspace_id) DO UPDATE SET
  last_lockdown_at = excluded.last_lockdown_at,
  transcript = excluded.transcript,
  updated_at = excluded.updated_at;
`, t.WorkspaceID, completedAt, string(data), now)
	if err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

// Latest returns the workspace's stored transcript, or (nil, nil) if the
// workspace has never been locked down.
func (s *Store) Latest(ctx context.Context, workspaceID string) (*Transcript, error) {
	if workspaceID == "" {
		return nil, fmt.Errorf("workspace id is empty")
	}

	var raw sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT transcript FROM workspace_state WHERE workspace_id = ?;", workspaceID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}

	t, err := Decode([]byte(raw.String))
	if err != nil {
		return nil, fmt.Errorf("stored transcript for workspace %s: %w", workspaceID, err)
	}
	t.WorkspaceID = workspaceID
	return t, nil
}

// StampReopen records the completion time of a reopen.
func (s *Store) StampReopen(ctx context.Context, workspaceID string, at time.Time) error {
	if workspaceID == "" {
		return fmt.Errorf("workspace id is empty")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO workspace_state(workspace_id, last_reopen_at, updated_at)
VALUES(?, ?, ?)
ON CONFLICT(workspace_id) DO UPDATE SET
  last_reopen_at = excluded.last_reopen_at,
  updated_at = excluded.updated_at;
`, workspaceID, at.UTC().Format(time.RFC3339Nano), now)
	if err != nil {
		return fmt.Errorf("stamp reopen: %w", err)
	}
	return nil
}

// Timestamps returns the last-lockdown and last-reopen times. Either is nil
// when the corresponding action never ran (or the workspace is unseen).
func (s *Store) Timestamps(ctx context.Context, workspaceID string) (lastLockdown, lastReopen *time.Time, err error) {
	if workspaceID == "" {
		return nil, nil, fmt.Errorf("workspace id is empty")
	}

	var lockdownS, reopenS sql.NullString
	err = s.db.QueryRowContext(ctx,
		"SELECT last_lockdown_at, last_reopen_at FROM workspace_state WHERE workspace_id = ?;",
		workspaceID).Scan(&lockdownS, &reopenS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read workspace stamps: %w", err)
	}

	// A corrupted stamp must surface as an error: dropping it would read as
	// "never ran" and invert the scheduler's skip decision.
	if lockdownS.Valid {
		t, perr := time.Parse(time.RFC3339Nano, lockdownS.String)
		if perr != nil {
			return nil, nil, fmt.Errorf("parse last_lockdown_at for workspace %s: %w", workspaceID, perr)
		}
		lastLockdown = &t
	}
	if reopenS.Valid {
		t, perr := time.Parse(time.RFC3339Nano, reopenS.String)
		if perr != nil {
			return nil, nil, fmt.Errorf("parse last_reopen_at for workspace %s: %w", workspaceID, perr)
		}
		lastReopen = &t
	}
	return lastLockdown, lastReopen, nil
}
