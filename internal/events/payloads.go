package events

import "time"

// Typed payloads for the events curfewd components publish. The JSON field
// names are the wire shape the API event feed and the watch TUI read.

// LockdownCompleted is the payload of TypeLockdownCompleted.
type LockdownCompleted struct {
	WorkspaceID      string `json:"workspace_id"`
	TranscriptID     string `json:"transcript_id"`
	AffectedChannels int    `json:"affected_channels"`
	AffectedRoles    int    `json:"affected_roles"`
	NoPermsChannels  int    `json:"no_perms_channels"`
	NoPermsRoles     int    `json:"no_perms_roles"`
	Auto             bool   `json:"auto"`
}

// ReopenCompleted is the payload of TypeReopenCompleted.
type ReopenCompleted struct {
	WorkspaceID      string `json:"workspace_id"`
	ReportID         string `json:"report_id"`
	TranscriptID     string `json:"transcript_id"`
	RestoredChannels int    `json:"restored_channels"`
	RestoredRoles    int    `json:"restored_roles"`
	MissingChannels  int    `json:"missing_channels"`
	MissingRoles     int    `json:"missing_roles"`
	Auto             bool   `json:"auto"`
}

// SchedulerTick is the payload of TypeSchedulerTick.
type SchedulerTick struct {
	At time.Time `json:"at"`
}

// SchedulerFired is the payload of TypeSchedulerFired.
type SchedulerFired struct {
	Action      string    `json:"action"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Stale       int64     `json:"stale"`
}

// SchedulerNote is the payload of TypeSchedulerSkipped and
// TypeSchedulerAnomaly.
type SchedulerNote struct {
	WorkspaceID string `json:"workspace_id"`
	Action      string `json:"action"`
	Reason      string `json:"reason"`
}
