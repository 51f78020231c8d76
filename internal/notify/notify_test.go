package notify

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mattjoyce/curfewd/internal/events"
)

// syncBuffer guards the capture buffer: the render loop writes from its own
// goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestNotifier() (*Notifier, *events.Hub, *syncBuffer) {
	buf := &syncBuffer{}
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hub := events.NewHub(16)
	return New(hub, logger), hub, buf
}

func waitFor(t *testing.T, buf *syncBuffer, substr string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if strings.Contains(buf.String(), substr) {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("log never contained %q, got: %s", substr, buf.String())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNotifierRendersCompletions(t *testing.T) {
	n, hub, buf := newTestNotifier()
	n.Start()
	defer n.Stop()

	hub.Publish(events.TypeLockdownCompleted, map[string]any{
		"workspace_id":      "ws1",
		"affected_channels": 3,
	})
	waitFor(t, buf, "Workspace locked down")

	hub.Publish(events.TypeReopenCompleted, map[string]any{
		"workspace_id":      "ws1",
		"restored_channels": 3,
	})
	waitFor(t, buf, "Workspace reopened")

	hub.Publish(events.TypeSchedulerAnomaly, map[string]any{
		"workspace_id": "ws1",
		"reason":       "reopen_without_transcript",
	})
	waitFor(t, buf, "Scheduler anomaly")
}

func TestNotifierIgnoresUnrelatedEvents(t *testing.T) {
	n, hub, buf := newTestNotifier()
	n.Start()

	hub.Publish(events.TypeSchedulerTick, map[string]any{"at": time.Now()})
	time.Sleep(20 * time.Millisecond)
	n.Stop()

	assert.NotContains(t, buf.String(), "Workspace locked down")
}
