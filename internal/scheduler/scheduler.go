// Package scheduler drives the curfew calendar: a fixed-interval poll loop
// that fires at most one due action per tick across all opted-in
// workspaces, then marks the entry completed. Stale backlog left over from
// downtime is backfilled as completed without being executed.
package scheduler

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mattjoyce/curfewd/internal/calendar"
	"github.com/mattjoyce/curfewd/internal/config"
	"github.com/mattjoyce/curfewd/internal/engine"
	"github.com/mattjoyce/curfewd/internal/events"
)

// Loop polls the calendar store on a fixed interval. Ticks never overlap:
// the loop runs a tick to completion before the ticker can start another.
type Loop struct {
	cfg    *config.Config
	cal    CalendarService
	engine Conductor
	state  WorkspaceState
	hub    *events.Hub
	logger *slog.Logger
	sleep  func(time.Duration)
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a new scheduler Loop.
func New(cfg *config.Config, cal CalendarService, eng Conductor, state WorkspaceState, hub *events.Hub, logger *slog.Logger) *Loop {
	if hub == nil {
		hub = events.NewHub(128)
	}
	return &Loop{
		cfg:    cfg,
		cal:    cal,
		engine: eng,
		state:  state,
		hub:    hub,
		logger: logger.With("component", "scheduler"),
		sleep:  time.Sleep,
		stopCh: make(chan struct{}),
	}
}

// Start begins the poll loop.
func (l *Loop) Start(ctx context.Context) {
	l.logger.Info("Starting scheduler", "tick_interval", l.cfg.Service.TickInterval.String())
	l.wg.Add(1)
	go l.tickLoop(ctx)
}

// Stop gracefully stops the scheduler, waiting for an in-flight tick.
func (l *Loop) Stop() {
	l.logger.Info("Stopping scheduler")
	close(l.stopCh)
	l.wg.Wait()
	l.logger.Info("Scheduler stopped")
}

func (l *Loop) tickLoop(ctx context.Context) {
	defer l.wg.Done()

	// Initial tick immediately: after downtime the backlog should not wait
	// a full interval.
	l.tick(ctx)

	ticker := time.NewTicker(l.cfg.Service.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.tick(ctx)
		case <-l.stopCh:
			return
		case <-ctx.Done():
			l.logger.Warn("Scheduler context cancelled, stopping tick loop")
			return
		}
	}
}

// tick performs a single poll pass.
func (l *Loop) tick(ctx context.Context) {
	now := time.Now().UTC()
	l.logger.Debug("Scheduler tick")
	l.hub.Publish(events.TypeSchedulerTick, events.SchedulerTick{At: now})

	entry, err := l.cal.NextDue(ctx, now)
	if err != nil {
		l.logger.Error("Failed to select due calendar entry", "error", err)
		return
	}
	if entry == nil {
		return
	}

	l.logger.Info("Executing scheduled action",
		"action", string(entry.Action),
		"scheduled_at", entry.ScheduledAt.Format(time.RFC3339),
	)

	// Pacing runs between workspaces only; the last one is not followed by
	// a pointless delay before completion marking.
	for i, workspaceID := range l.eligibleWorkspaces() {
		if i > 0 {
			l.sleep(l.cfg.Service.WorkspacePacing)
		}
		l.runWorkspace(ctx, workspaceID, entry)
	}

	// Completion marking is the commit point: a crash before this retries
	// the same entry on the next tick, the flag makes the store the single
	// source of truth for "has this fired".
	completedAt := time.Now().UTC()
	if err := l.cal.MarkCompleted(ctx, entry.ScheduledAt, completedAt); err != nil {
		l.logger.Error("Failed to mark calendar entry completed", "error", err)
		return
	}

	stale, err := l.cal.CompleteStale(ctx, entry.ScheduledAt, completedAt)
	if err != nil {
		l.logger.Error("Failed to backfill stale calendar entries", "error", err)
		return
	}
	if stale > 0 {
		l.logger.Warn("Discarded stale calendar backlog without executing", "count", stale)
	}

	l.logger.Info("Scheduled action completed",
		"action", string(entry.Action),
		"scheduled_at", entry.ScheduledAt.Format(time.RFC3339),
	)
	l.hub.Publish(events.TypeSchedulerFired, events.SchedulerFired{
		Action:      string(entry.Action),
		ScheduledAt: entry.ScheduledAt,
		Stale:       stale,
	})
}

// eligibleWorkspaces returns opted-in workspace ids in stable order.
func (l *Loop) eligibleWorkspaces() []string {
	var ids []string
	for id, policy := range l.cfg.Workspaces {
		if policy.UseCalendar {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (l *Loop) runWorkspace(ctx context.Context, workspaceID string, entry *calendar.Entry) {
	logger := l.logger.With("workspace_id", workspaceID)

	lastLockdown, lastReopen, err := l.state.Timestamps(ctx, workspaceID)
	if err != nil {
		logger.Error("Failed to read workspace stamps", "error", err)
		return
	}
	lockT := tsOrZero(lastLockdown)
	reopenT := tsOrZero(lastReopen)

	prov := engine.Provenance{Auto: true, ScheduledAt: &entry.ScheduledAt}
	policy := l.cfg.Workspaces[workspaceID]

	switch entry.Action {
	case calendar.ActionLockdown:
		if lockT.After(reopenT) {
			l.skip(workspaceID, entry, "already_locked_down")
			return
		}
		logger.Info("Automatically locking down workspace")
		params := engine.Params{
			TargetRoles:     policy.TargetRoles,
			IgnoredRoles:    policy.IgnoredRoles,
			IgnoredChannels: policy.IgnoredChannels,
			IgnoreNeutral:   policy.IgnoreNeutral,
		}
		if _, err := l.engine.Lockdown(ctx, workspaceID, params, prov); err != nil {
			logger.Error("Scheduled lockdown failed", "error", err)
		}

	case calendar.ActionReopen:
		if lockT.Before(reopenT) {
			l.skip(workspaceID, entry, "already_open")
			return
		}
		t, err := l.state.Latest(ctx, workspaceID)
		if err != nil {
			logger.Error("Failed to load stored transcript", "error", err)
			return
		}
		if t == nil {
			// Reopening with no prior lockdown is undefined; record the
			// anomaly instead of synthesizing a no-op success.
			logger.Warn("No transcript stored for scheduled reopen, skipping workspace")
			l.hub.Publish(events.TypeSchedulerAnomaly, events.SchedulerNote{
				WorkspaceID: workspaceID,
				Action:      string(entry.Action),
				Reason:      "reopen_without_transcript",
			})
			return
		}
		logger.Info("Automatically reopening workspace")
		if _, err := l.engine.Reopen(ctx, workspaceID, t, prov); err != nil {
			logger.Error("Scheduled reopen failed", "error", err)
		}

	default:
		logger.Error("Unknown calendar action", "action", string(entry.Action))
	}
}

func (l *Loop) skip(workspaceID string, entry *calendar.Entry, reason string) {
	l.logger.Info("Skipped workspace for scheduled action",
		"workspace_id", workspaceID,
		"action", string(entry.Action),
		"reason", reason,
	)
	l.hub.Publish(events.TypeSchedulerSkipped, events.SchedulerNote{
		WorkspaceID: workspaceID,
		Action:      string(entry.Action),
		Reason:      reason,
	})
}

func tsOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
