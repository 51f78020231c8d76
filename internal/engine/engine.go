// Package engine implements the curfew reconciliation: Lockdown diffs a
// workspace's visibility state against a full-deny target and records a
// minimal transcript; Reopen replays that transcript to restore prior
// state. Per-entity failures (vanished entities, denied writes) are
// absorbed into the result; only the final persistence step can fail a
// whole invocation.
package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mattjoyce/curfewd/internal/events"
	"github.com/mattjoyce/curfewd/internal/platform"
)

// Params are the operator-supplied knobs for one lockdown.
type Params struct {
	TargetRoles     []string
	IgnoredRoles    []string
	IgnoredChannels []string
	// IgnoreNeutral leaves rules with no explicit prior opinion (Unset)
	// untouched instead of flipping them to Deny.
	IgnoreNeutral bool
}

// Provenance records who or what triggered an invocation.
type Provenance struct {
	Auto        bool
	OperatorID  string
	ScheduledAt *time.Time
}

// Engine drives Lockdown and Reopen against one platform client.
type Engine struct {
	client platform.AccessClient
	store  TranscriptStore
	hub    *events.Hub
	logger *slog.Logger

	// callsPerSecond is the external throughput budget; pacing sleeps
	// batch/callsPerSecond after each write batch. Zero disables pacing.
	callsPerSecond float64
	sleep          func(time.Duration)

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(client platform.AccessClient, store TranscriptStore, hub *events.Hub, logger *slog.Logger, callsPerSecond float64) *Engine {
	if hub == nil {
		hub = events.NewHub(128)
	}
	return &Engine{
		client:         client,
		store:          store,
		hub:            hub,
		logger:         logger.With("component", "engine"),
		callsPerSecond: callsPerSecond,
		sleep:          time.Sleep,
		locks:          map[string]*sync.Mutex{},
	}
}

// lockWorkspace serializes Lockdown/Reopen per workspace. Two concurrent
// invocations against different workspaces proceed independently.
func (e *Engine) lockWorkspace(workspaceID string) func() {
	e.mu.Lock()
	l, ok := e.locks[workspaceID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[workspaceID] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// pace suspends proportionally to the batch just written so the external
// call rate stays under the platform's budget.
func (e *Engine) pace(batch int) {
	if e.callsPerSecond <= 0 || batch <= 0 {
		return
	}
	e.sleep(time.Duration(float64(batch) / e.callsPerSecond * float64(time.Second)))
}
