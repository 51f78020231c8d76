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

// Reopen replays a lockdown transcript, restoring every recorded rule to
// its prior value. Entities that drifted away since the lockdown are
// reported, never fabricated: a missing channel is skipped whole, a missing
// rule is skipped pair-wise. The supplied transcript is never mutated or
// deleted, so a reopen can be retried against the same record.
func (e *Engine) Reopen(ctx context.Context, workspaceID string, t *transcript.Transcript, prov Provenance) (*transcript.Report, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: no transcript supplied", transcript.ErrMalformed)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	unlock := e.lockWorkspace(workspaceID)
	defer unlock()

	logger := e.logger.With("workspace_id", workspaceID)

	roles, err := e.client.Roles(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list roles for workspace %s: %w", workspaceID, err)
	}
	existingRoles := make(map[string]bool, len(roles))
	for _, r := range roles {
		existingRoles[r.ID] = true
	}

	r := transcript.NewReport(workspaceID)
	missingChannels := map[string]bool{}
	missingRoles := map[string]bool{}

	channelIDs := make([]string, 0, len(t.AffectedChannels))
	for id := range t.AffectedChannels {
		channelIDs = append(channelIDs, id)
	}
	sort.Strings(channelIDs)

	for _, channelID := range channelIDs {
		changes := t.AffectedChannels[channelID]

		rules, err := e.client.ChannelRules(ctx, workspaceID, channelID)
		switch {
		case errors.Is(err, platform.ErrNotFound):
			missingChannels[channelID] = true
			continue
		case errors.Is(err, platform.ErrPermissionDenied):
			r.NoPermsChannels = append(r.NoPermsChannels, channelID)
			continue
		case err != nil:
			logger.Error("Failed to read channel rules, skipping channel", "channel_id", channelID, "error", err)
			r.NoPermsChannels = append(r.NoPermsChannels, channelID)
			continue
		}

		rules = rules.Clone()
		applied := 0
		for _, rc := range changes {
			if !existingRoles[rc.RoleID] {
				missingRoles[rc.RoleID] = true
				continue
			}
			idx := rules.Find(rc.RoleID)
			if idx < 0 {
				// The rule disappeared since lockdown. Reopen never
				// fabricates a rule; report and move on.
				r.MissingOverwrites[channelID] = append(r.MissingOverwrites[channelID], rc.RoleID)
				continue
			}
			rules[idx].View = rc.Prior
			applied++
		}

		if applied == 0 {
			continue
		}

		err = e.client.SetChannelRules(ctx, workspaceID, channelID, rules)
		switch {
		case errors.Is(err, platform.ErrPermissionDenied):
			r.NoPermsChannels = append(r.NoPermsChannels, channelID)
			continue
		case errors.Is(err, platform.ErrNotFound):
			missingChannels[channelID] = true
			continue
		case err != nil:
			logger.Error("Failed to write channel rules, skipping channel", "channel_id", channelID, "error", err)
			r.NoPermsChannels = append(r.NoPermsChannels, channelID)
			continue
		}

		r.RestoredChannels++
		e.pace(applied)
	}

	for _, roleID := range t.AffectedRoles {
		if !existingRoles[roleID] {
			missingRoles[roleID] = true
			continue
		}

		baseline, err := e.client.RoleBaseline(ctx, workspaceID, roleID)
		switch {
		case errors.Is(err, platform.ErrNotFound):
			missingRoles[roleID] = true
			continue
		case errors.Is(err, platform.ErrPermissionDenied):
			r.NoPermsRoles = append(r.NoPermsRoles, roleID)
			continue
		case err != nil:
			logger.Error("Failed to read role baseline, skipping role", "role_id", roleID, "error", err)
			r.NoPermsRoles = append(r.NoPermsRoles, roleID)
			continue
		}

		// Lockdown only records roles flipped from non-Deny to Deny, so
		// Allow is the only possible restoration target.
		baseline.View = perm.Allow
		err = e.client.SetRoleBaseline(ctx, workspaceID, roleID, baseline)
		switch {
		case errors.Is(err, platform.ErrPermissionDenied):
			r.NoPermsRoles = append(r.NoPermsRoles, roleID)
			continue
		case errors.Is(err, platform.ErrNotFound):
			missingRoles[roleID] = true
			continue
		case err != nil:
			logger.Error("Failed to write role baseline, skipping role", "role_id", roleID, "error", err)
			r.NoPermsRoles = append(r.NoPermsRoles, roleID)
			continue
		}

		r.RestoredRoles++
		e.pace(1)
	}

	for id := range missingChannels {
		r.MissingChannels = append(r.MissingChannels, id)
	}
	sort.Strings(r.MissingChannels)
	for id := range missingRoles {
		r.MissingRoles = append(r.MissingRoles, id)
	}
	sort.Strings(r.MissingRoles)

	now := time.Now().UTC()
	r.Meta = transcript.Meta{
		ID:          uuid.NewString(),
		Auto:        prov.Auto,
		OperatorID:  prov.OperatorID,
		ScheduledAt: prov.ScheduledAt,
		CompletedAt: now,
	}

	if err := e.store.StampReopen(ctx, workspaceID, now); err != nil {
		return nil, fmt.Errorf("persist reopen stamp for workspace %s: %w", workspaceID, err)
	}

	logger.Info("Reopen completed",
		"restored_channels", r.RestoredChannels,
		"restored_roles", r.RestoredRoles,
		"missing_channels", len(r.MissingChannels),
		"missing_roles", len(r.MissingRoles),
		"auto", prov.Auto,
	)
	e.hub.Publish(events.TypeReopenCompleted, events.ReopenCompleted{
		WorkspaceID:      workspaceID,
		ReportID:         r.Meta.ID,
		TranscriptID:     t.Meta.ID,
		RestoredChannels: r.RestoredChannels,
		RestoredRoles:    r.RestoredRoles,
		MissingChannels:  len(r.MissingChannels),
		MissingRoles:     len(r.MissingRoles),
		Auto:             prov.Auto,
	})
	return r, nil
}
