// Package notify renders completion signals for operators. The transport
// (chat message, mail, pager) belongs to an external collaborator; this
// package owns only the subscription and a human-readable rendering into
// the service log.
package notify

import (
	"encoding/json"
	"log/slog"

	"github.com/mattjoyce/curfewd/internal/events"
)

type Notifier struct {
	hub    *events.Hub
	logger *slog.Logger
	done   chan struct{}
	cancel func()
}

func New(hub *events.Hub, logger *slog.Logger) *Notifier {
	return &Notifier{
		hub:    hub,
		logger: logger.With("component", "notify"),
		done:   make(chan struct{}),
	}
}

// Start subscribes to the hub and renders completion events until Stop.
func (n *Notifier) Start() {
	ch, cancel := n.hub.Subscribe()
	n.cancel = cancel

	go func() {
		defer close(n.done)
		for ev := range ch {
			n.render(ev)
		}
	}()
}

// Stop cancels the subscription and waits for the render loop to drain.
func (n *Notifier) Stop() {
	if n.cancel != nil {
		n.cancel()
	}
	<-n.done
}

func (n *Notifier) render(ev events.Event) {
	switch ev.Type {
	case events.TypeLockdownCompleted:
		var p events.LockdownCompleted
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			n.logger.Debug("Undecodable event payload", "type", ev.Type)
			return
		}
		n.logger.Info("Workspace locked down",
			"workspace_id", p.WorkspaceID,
			"affected_channels", p.AffectedChannels,
			"affected_roles", p.AffectedRoles,
			"no_perms_channels", p.NoPermsChannels,
			"no_perms_roles", p.NoPermsRoles,
			"auto", p.Auto,
		)
	case events.TypeReopenCompleted:
		var p events.ReopenCompleted
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			n.logger.Debug("Undecodable event payload", "type", ev.Type)
			return
		}
		n.logger.Info("Workspace reopened",
			"workspace_id", p.WorkspaceID,
			"restored_channels", p.RestoredChannels,
			"restored_roles", p.RestoredRoles,
			"missing_channels", p.MissingChannels,
			"missing_roles", p.MissingRoles,
			"auto", p.Auto,
		)
	case events.TypeSchedulerAnomaly:
		var p events.SchedulerNote
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			n.logger.Debug("Undecodable event payload", "type", ev.Type)
			return
		}
		n.logger.Warn("Scheduler anomaly",
			"workspace_id", p.WorkspaceID,
			"action", p.Action,
			"reason", p.Reason,
		)
	}
}
