// Package platform is the single point of contact with the external chat
// platform. Everything above it works against AccessClient; denial and
// disappearance are typed, non-fatal outcomes so callers can keep
// processing siblings.
package platform

import (
	"context"
	"errors"

	"github.com/mattjoyce/curfewd/internal/perm"
)

var (
	// ErrNotFound means the workspace, channel, or role no longer exists.
	ErrNotFound = errors.New("platform: entity not found")
	// ErrPermissionDenied means the service account lacks authorization for
	// the attempted mutation.
	ErrPermissionDenied = errors.New("platform: permission denied")
)

// Channel is a permissioned sub-resource of a workspace.
type Channel struct {
	ID   string
	Name string
}

// Role is a named grantee group. Every workspace carries exactly one
// catch-all role (Everyone == true).
type Role struct {
	ID       string
	Name     string
	Everyone bool
}

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks github.com/mattjoyce/curfewd/internal/platform AccessClient

// AccessClient reads and writes a workspace's visibility state. Writes
// replace the full rule set of a channel in one call; there is no partial
// per-rule application and no retrying at this layer.
type AccessClient interface {
	Channels(ctx context.Context, workspaceID string) ([]Channel, error)
	Roles(ctx context.Context, workspaceID string) ([]Role, error)
	EveryoneRole(ctx context.Context, workspaceID string) (Role, error)

	ChannelRules(ctx context.Context, workspaceID, channelID string) (perm.RuleSet, error)
	SetChannelRules(ctx context.Context, workspaceID, channelID string, rules perm.RuleSet) error

	RoleBaseline(ctx context.Context, workspaceID, roleID string) (perm.Baseline, error)
	SetRoleBaseline(ctx context.Context, workspaceID, roleID string, baseline perm.Baseline) error
}
