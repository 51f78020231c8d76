// Package calendar is the append-only log of scheduled curfew actions. An
// entry's identity is its scheduled timestamp; creation comes from the
// calendar-sync collaborator (or the API), and only the scheduler marks
// completion.
package calendar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Action is the kind of scheduled curfew action.
type Action string

const (
	ActionLockdown Action = "LOCKDOWN"
	ActionReopen   Action = "REOPEN"
)

func (a Action) Valid() bool {
	return a == ActionLockdown || a == ActionReopen
}

// Entry is one scheduled action. Timestamps are unix seconds on disk.
type Entry struct {
	Action      Action     `json:"action"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append adds a new uncompleted entry. Appending a second entry at the same
// scheduled timestamp is an error (the timestamp is the identity).
func (s *Store) Append(ctx context.Context, action Action, scheduledAt time.Time) error {
	if !action.Valid() {
		return fmt.Errorf("invalid calendar action %q", action)
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO calendar(scheduled_at, action, completed) VALUES(?, ?, 0);",
		scheduledAt.Unix(), string(action))
	if err != nil {
		return fmt.Errorf("append calendar entry: %w", err)
	}
	return nil
}

// NextDue returns the uncompleted entry with the greatest scheduled time
// not after now, or (nil, nil) when nothing is due. After downtime this
// deliberately selects only the most recent of the backlog; older entries
// are stale and get backfilled by CompleteStale.
func (s *Store) NextDue(ctx context.Context, now time.Time) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT scheduled_at, action, completed, completed_at
FROM calendar
WHERE completed = 0 AND scheduled_at <= ?
ORDER BY scheduled_at DESC
LIMIT 1;
`, now.Unix())

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select due calendar entry: %w", err)
	}
	return e, nil
}

// MarkCompleted flips the entry's completed flag and stamps completion.
func (s *Store) MarkCompleted(ctx context.Context, scheduledAt, completedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE calendar SET completed = 1, completed_at = ? WHERE scheduled_at = ?;",
		completedAt.Unix(), scheduledAt.Unix())
	if err != nil {
		return fmt.Errorf("mark calendar entry completed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no calendar entry at %d", scheduledAt.Unix())
	}
	return nil
}

// CompleteStale marks every uncompleted entry scheduled strictly before the
// cutoff as completed without executing it. Returns the number backfilled.
func (s *Store) CompleteStale(ctx context.Context, before, completedAt time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE calendar SET completed = 1, completed_at = ? WHERE completed = 0 AND scheduled_at < ?;",
		completedAt.Unix(), before.Unix())
	if err != nil {
		return 0, fmt.Errorf("backfill stale calendar entries: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// List returns entries newest-first, capped at limit (0 means 50).
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT scheduled_at, action, completed, completed_at
FROM calendar
ORDER BY scheduled_at DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list calendar entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan calendar entry: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		scheduledAt int64
		action      string
		completed   int
		completedAt sql.NullInt64
	)
	if err := row.Scan(&scheduledAt, &action, &completed, &completedAt); err != nil {
		return nil, err
	}

	e := &Entry{
		Action:      Action(action),
		ScheduledAt: time.Unix(scheduledAt, 0).UTC(),
		Completed:   completed != 0,
	}
	if completedAt.Valid {
		t := time.Unix(completedAt.Int64, 0).UTC()
		e.CompletedAt = &t
	}
	return e, nil
}
