package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/curfewd/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := storage.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}

func TestAppendAndNextDue(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	// Nothing scheduled: nothing due.
	e, err := store.NextDue(ctx, now)
	require.NoError(t, err)
	assert.Nil(t, e)

	require.NoError(t, store.Append(ctx, ActionLockdown, now.Add(-time.Hour)))
	require.NoError(t, store.Append(ctx, ActionReopen, now.Add(time.Hour)))

	e, err = store.NextDue(ctx, now)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, ActionLockdown, e.Action)
	assert.False(t, e.Completed)

	// The future entry is not selected.
	assert.True(t, e.ScheduledAt.Before(now))
}

func TestNextDuePicksNewestOfBacklog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t1 := now.Add(-3 * time.Hour)
	t2 := now.Add(-2 * time.Hour)
	t3 := now.Add(-1 * time.Hour)
	require.NoError(t, store.Append(ctx, ActionLockdown, t1))
	require.NoError(t, store.Append(ctx, ActionReopen, t2))
	require.NoError(t, store.Append(ctx, ActionLockdown, t3))

	// After downtime only the most recent overdue entry runs.
	e, err := store.NextDue(ctx, now)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.True(t, t3.Equal(e.ScheduledAt))

	require.NoError(t, store.MarkCompleted(ctx, t3, now))
	stale, err := store.CompleteStale(ctx, t3, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stale)

	// Everything is now completed; nothing left to run.
	e, err = store.NextDue(ctx, now)
	require.NoError(t, err)
	assert.Nil(t, e)

	entries, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, entry := range entries {
		assert.True(t, entry.Completed)
		require.NotNil(t, entry.CompletedAt)
	}
}

func TestMarkCompletedUnknownEntry(t *testing.T) {
	store := newTestStore(t)
	err := store.MarkCompleted(context.Background(), time.Now(), time.Now())
	assert.Error(t, err)
}

func TestCompletedEntriesAreNeverDueAgain(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	at := now.Add(-time.Minute)

	require.NoError(t, store.Append(ctx, ActionReopen, at))
	require.NoError(t, store.MarkCompleted(ctx, at, now))

	e, err := store.NextDue(ctx, now)
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestAppendRejectsInvalidAction(t *testing.T) {
	store := newTestStore(t)
	err := store.Append(context.Background(), Action("CLOSE"), time.Now())
	assert.Error(t, err)
}

func TestAppendDuplicateTimestamp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	at := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, store.Append(ctx, ActionLockdown, at))
	// The scheduled timestamp is the entry's identity.
	assert.Error(t, store.Append(ctx, ActionReopen, at))
}

func TestListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, store.Append(ctx, ActionLockdown, base.Add(1*time.Hour)))
	require.NoError(t, store.Append(ctx, ActionReopen, base.Add(2*time.Hour)))
	require.NoError(t, store.Append(ctx, ActionLockdown, base.Add(3*time.Hour)))

	entries, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].ScheduledAt.After(entries[1].ScheduledAt))
}
