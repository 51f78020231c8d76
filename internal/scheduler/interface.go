package scheduler

import (
	"context"
	"time"

	"github.com/mattjoyce/curfewd/internal/calendar"
	"github.com/mattjoyce/curfewd/internal/engine"
	"github.com/mattjoyce/curfewd/internal/transcript"
)

//go:generate mockgen -destination=mocks/mock_services.go -package=mocks github.com/mattjoyce/curfewd/internal/scheduler CalendarService,Conductor,WorkspaceState

// CalendarService defines the schedule-store operations used by the loop.
type CalendarService interface {
	NextDue(ctx context.Context, now time.Time) (*calendar.Entry, error)
	MarkCompleted(ctx context.Context, scheduledAt, completedAt time.Time) error
	CompleteStale(ctx context.Context, before, completedAt time.Time) (int64, error)
}

// Conductor defines the reconciliation operations the loop triggers.
type Conductor interface {
	Lockdown(ctx context.Context, workspaceID string, p engine.Params, prov engine.Provenance) (*transcript.Transcript, error)
	Reopen(ctx context.Context, workspaceID string, t *transcript.Transcript, prov engine.Provenance) (*transcript.Report, error)
}

// WorkspaceState defines the per-workspace reads behind the skip logic.
type WorkspaceState interface {
	Latest(ctx context.Context, workspaceID string) (*transcript.Transcript, error)
	Timestamps(ctx context.Context, workspaceID string) (lastLockdown, lastReopen *time.Time, err error)
}
