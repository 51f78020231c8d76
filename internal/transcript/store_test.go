package transcript

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/curfewd/internal/perm"
	"github.com/mattjoyce/curfewd/internal/storage"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestStoreSaveAndLatest(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	got, err := store.Latest(ctx, "ws1")
	require.NoError(t, err)
	assert.Nil(t, got)

	tr := New("ws1")
	tr.AffectedChannels["c1"] = []RoleChange{{RoleID: "rE", Prior: perm.Allow}}
	tr.Meta = Meta{ID: "t-1", CompletedAt: time.Now().UTC()}
	require.NoError(t, store.Save(ctx, tr))

	got, err = store.Latest(ctx, "ws1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ws1", got.WorkspaceID)
	assert.Equal(t, tr.AffectedChannels, got.AffectedChannels)
	assert.Equal(t, "t-1", got.Meta.ID)
}

func TestStoreSaveOverwrites(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	first := New("ws1")
	first.Meta = Meta{ID: "t-1", CompletedAt: time.Now().UTC()}
	require.NoError(t, store.Save(ctx, first))

	second := New("ws1")
	second.AffectedRoles = []string{"rE"}
	second.Meta = Meta{ID: "t-2", CompletedAt: time.Now().UTC()}
	require.NoError(t, store.Save(ctx, second))

	got, err := store.Latest(ctx, "ws1")
	require.NoError(t, err)
	assert.Equal(t, "t-2", got.Meta.ID)
	assert.Equal(t, []string{"rE"}, got.AffectedRoles)
}

func TestStoreTimestamps(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	// Unseen workspace: both stamps nil.
	lock, reopen, err := store.Timestamps(ctx, "ws1")
	require.NoError(t, err)
	assert.Nil(t, lock)
	assert.Nil(t, reopen)

	lockAt := time.Date(2026, 8, 20, 22, 0, 0, 0, time.UTC)
	tr := New("ws1")
	tr.Meta = Meta{ID: "t-1", CompletedAt: lockAt}
	require.NoError(t, store.Save(ctx, tr))

	lock, reopen, err = store.Timestamps(ctx, "ws1")
	require.NoError(t, err)
	require.NotNil(t, lock)
	assert.True(t, lockAt.Equal(*lock))
	assert.Nil(t, reopen)

	reopenAt := lockAt.Add(8 * time.Hour)
	require.NoError(t, store.StampReopen(ctx, "ws1", reopenAt))

	lock, reopen, err = store.Timestamps(ctx, "ws1")
	require.NoError(t, err)
	require.NotNil(t, lock)
	require.NotNil(t, reopen)
	assert.True(t, reopenAt.Equal(*reopen))
	// The transcript itself survives the reopen stamp.
	got, err := store.Latest(ctx, "ws1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "t-1", got.Meta.ID)
}

func TestStoreStampReopenCreatesRow(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	at := time.Now().UTC()
	require.NoError(t, store.StampReopen(ctx, "fresh", at))

	lock, reopen, err := store.Timestamps(ctx, "fresh")
	require.NoError(t, err)
	assert.Nil(t, lock)
	require.NotNil(t, reopen)
	assert.True(t, at.Equal(*reopen))
}

func TestStoreTimestampsSurfaceCorruptStamp(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
INSERT INTO workspace_state(workspace_id, last_lockdown_at, updated_at)
VALUES('ws1', 'not-a-timestamp', 'not-a-timestamp');`)
	require.NoError(t, err)

	// A corrupted stamp errors out instead of reading as "never locked",
	// which would make the scheduler re-run a lockdown.
	_, _, err = store.Timestamps(ctx, "ws1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last_lockdown_at")
}

func TestStoreRejectsEmptyWorkspace(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, New("")))
	assert.Error(t, store.StampReopen(ctx, "", time.Now()))
	_, err := store.Latest(ctx, "")
	assert.Error(t, err)
}
