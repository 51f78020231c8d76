package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishAndSubscribe(t *testing.T) {
	hub := NewHub(8)
	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish(TypeLockdownCompleted, map[string]any{"workspace_id": "ws1"})

	select {
	case ev := <-ch:
		assert.Equal(t, TypeLockdownCompleted, ev.Type)
		var data map[string]any
		require.NoError(t, json.Unmarshal(ev.Data, &data))
		assert.Equal(t, "ws1", data["workspace_id"])
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestTypedPayloadRoundTrip(t *testing.T) {
	hub := NewHub(8)
	hub.Publish(TypeLockdownCompleted, LockdownCompleted{
		WorkspaceID:      "ws1",
		TranscriptID:     "t-1",
		AffectedChannels: 3,
		Auto:             true,
	})

	snap := hub.SnapshotSince(0)
	require.Len(t, snap, 1)

	var p LockdownCompleted
	require.NoError(t, json.Unmarshal(snap[0].Data, &p))
	assert.Equal(t, "ws1", p.WorkspaceID)
	assert.Equal(t, 3, p.AffectedChannels)
	assert.True(t, p.Auto)
}

func TestSnapshotSince(t *testing.T) {
	hub := NewHub(8)
	hub.Publish(TypeSchedulerTick, nil)
	hub.Publish(TypeSchedulerFired, nil)
	hub.Publish(TypeSchedulerSkipped, nil)

	all := hub.SnapshotSince(0)
	require.Len(t, all, 3)
	assert.Equal(t, TypeSchedulerTick, all[0].Type)

	rest := hub.SnapshotSince(all[0].ID)
	require.Len(t, rest, 2)
	assert.Equal(t, TypeSchedulerFired, rest[0].Type)
}

func TestRingBufferOverwritesOldest(t *testing.T) {
	hub := NewHub(2)
	hub.Publish(TypeSchedulerTick, nil)
	hub.Publish(TypeSchedulerFired, nil)
	hub.Publish(TypeSchedulerSkipped, nil)

	snap := hub.SnapshotSince(0)
	require.Len(t, snap, 2)
	assert.Equal(t, TypeSchedulerFired, snap[0].Type)
	assert.Equal(t, TypeSchedulerSkipped, snap[1].Type)
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub(4)
	_, cancel := hub.Subscribe()
	defer cancel()

	// Fill the subscriber channel well past its buffer; Publish must not
	// block even though nothing drains.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			hub.Publish(TypeSchedulerTick, nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}
}

func TestCancelClosesSubscription(t *testing.T) {
	hub := NewHub(4)
	ch, cancel := hub.Subscribe()
	cancel()

	_, open := <-ch
	assert.False(t, open)
}
