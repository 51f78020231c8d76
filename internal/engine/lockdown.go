package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mattjoyce/curfewd/internal/events"
	"github.com/mattjoyce/curfewd/internal/perm"
	"github.com/mattjoyce/curfewd/internal/platform"
	"github.com/mattjoyce/curfewd/internal/transcript"
)

// Lockdown flips visibility to Deny for the target roles (always including
// the workspace's catch-all role) across every non-ignored channel, then
// denies the targets' baseline visibility. It returns the transcript of
// prior values that a later Reopen replays.
//
// A channel whose rules already satisfy the deny state gets no write call
// at all. A denied channel write discards that channel's recorded diffs:
// the transcript never claims a change the platform did not accept.
func (e *Engine) Lockdown(ctx context.Context, workspaceID string, p Params, prov Provenance) (*transcript.Transcript, error) {
	unlock := e.lockWorkspace(workspaceID)
	defer unlock()

	logger := e.logger.With("workspace_id", workspaceID)

	everyone, err := e.client.EveryoneRole(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("resolve catch-all role for workspace %s: %w", workspaceID, err)
	}

	targets := map[string]bool{everyone.ID: true}
	for _, id := range p.TargetRoles {
		targets[id] = true
	}
	for _, id := range p.IgnoredRoles {
		delete(targets, id)
	}

	ignoredChannels := map[string]bool{}
	for _, id := range p.IgnoredChannels {
		ignoredChannels[id] = true
	}

	channels, err := e.client.Channels(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list channels for workspace %s: %w", workspaceID, err)
	}

	t := transcript.New(workspaceID)

	for _, ch := range channels {
		if ignoredChannels[ch.ID] {
			continue
		}

		rules, err := e.client.ChannelRules(ctx, workspaceID, ch.ID)
		switch {
		case errors.Is(err, platform.ErrNotFound):
			logger.Debug("Channel vanished before read, skipping", "channel_id", ch.ID)
			continue
		case errors.Is(err, platform.ErrPermissionDenied):
			t.NoPermsChannels = append(t.NoPermsChannels, ch.ID)
			continue
		case err != nil:
			logger.Error("Failed to read channel rules, skipping channel", "channel_id", ch.ID, "error", err)
			continue
		}

		rules = rules.Clone()
		// The catch-all role must be explicitly represented post-lockdown;
		// synthesize an Unset rule as the prior-state marker when absent.
		if rules.Find(everyone.ID) < 0 {
			rules = append(rules, perm.AccessRule{RoleID: everyone.ID, View: perm.Unset})
		}

		var changes []transcript.RoleChange
		for i := range rules {
			if !targets[rules[i].RoleID] {
				continue
			}
			if rules[i].View == perm.Deny {
				continue
			}
			if p.IgnoreNeutral && rules[i].View == perm.Unset {
				continue
			}
			changes = append(changes, transcript.RoleChange{RoleID: rules[i].RoleID, Prior: rules[i].View})
			rules[i].View = perm.Deny
		}

		if len(changes) == 0 {
			continue
		}

		err = e.client.SetChannelRules(ctx, workspaceID, ch.ID, rules)
		switch {
		case errors.Is(err, platform.ErrPermissionDenied):
			t.NoPermsChannels = append(t.NoPermsChannels, ch.ID)
			continue
		case errors.Is(err, platform.ErrNotFound):
			logger.Debug("Channel vanished before write, skipping", "channel_id", ch.ID)
			continue
		case err != nil:
			logger.Error("Failed to write channel rules, skipping channel", "channel_id", ch.ID, "error", err)
			continue
		}

		t.AffectedChannels[ch.ID] = changes
		e.pace(len(changes))
	}

	targetIDs := make([]string, 0, len(targets))
	for id := range targets {
		targetIDs = append(targetIDs, id)
	}
	sort.Strings(targetIDs)

	for _, roleID := range targetIDs {
		baseline, err := e.client.RoleBaseline(ctx, workspaceID, roleID)
		switch {
		case errors.Is(err, platform.ErrNotFound):
			logger.Debug("Role vanished before baseline read, skipping", "role_id", roleID)
			continue
		case errors.Is(err, platform.ErrPermissionDenied):
			t.NoPermsRoles = append(t.NoPermsRoles, roleID)
			continue
		case err != nil:
			logger.Error("Failed to read role baseline, skipping role", "role_id", roleID, "error", err)
			continue
		}
		if baseline.View == perm.Deny {
			continue
		}

		baseline.View = perm.Deny
		err = e.client.SetRoleBaseline(ctx, workspaceID, roleID, baseline)
		switch {
		case errors.Is(err, platform.ErrPermissionDenied):
			t.NoPermsRoles = append(t.NoPermsRoles, roleID)
			continue
		case errors.Is(err, platform.ErrNotFound):
			logger.Debug("Role vanished before baseline write, skipping", "role_id", roleID)
			continue
		case err != nil:
			logger.Error("Failed to write role baseline, skipping role", "role_id", roleID, "error", err)
			continue
		}

		t.AffectedRoles = append(t.AffectedRoles, roleID)
		e.pace(1)
	}

	now := time.Now().UTC()
	t.Meta = transcript.Meta{
		ID:          uuid.NewString(),
		Auto:        prov.Auto,
		OperatorID:  prov.OperatorID,
		ScheduledAt: prov.ScheduledAt,
		CompletedAt: now,
	}

	// The only fatal step: everything above was absorbed into the
	// transcript, but a transcript that cannot be persisted must not be
	// reported as a completed lockdown.
	if err := e.store.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("persist lockdown transcript for workspace %s: %w", workspaceID, err)
	}

	logger.Info("Lockdown completed",
		"affected_channels", len(t.AffectedChannels),
		"affected_roles", len(t.AffectedRoles),
		"no_perms_channels", len(t.NoPermsChannels),
		"no_perms_roles", len(t.NoPermsRoles),
		"auto", prov.Auto,
	)
	e.hub.Publish(events.TypeLockdownCompleted, events.LockdownCompleted{
		WorkspaceID:      workspaceID,
		TranscriptID:     t.Meta.ID,
		AffectedChannels: len(t.AffectedChannels),
		AffectedRoles:    len(t.AffectedRoles),
		NoPermsChannels:  len(t.NoPermsChannels),
		NoPermsRoles:     len(t.NoPermsRoles),
		Auto:             prov.Auto,
	})
	return t, nil
}
