package platform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/curfewd/internal/perm"
)

func TestMemorySentinels(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Channels(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.EveryoneRole(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.ChannelRules(ctx, "missing", "c1")
	assert.ErrorIs(t, err, ErrNotFound)

	m.AddWorkspace("ws1", "rE")
	m.AddChannel("ws1", "c1", "general")
	m.DenyChannelWrites("ws1", "c1", true)
	err = m.SetChannelRules(ctx, "ws1", "c1", perm.RuleSet{})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	m.DenyRoleWrites("ws1", "rE", true)
	err = m.SetRoleBaseline(ctx, "ws1", "rE", perm.Baseline{View: perm.Deny})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestMemoryStableEnumeration(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.AddWorkspace("ws1", "rE")
	m.AddChannel("ws1", "c2", "two")
	m.AddChannel("ws1", "c1", "one")
	m.AddRole("ws1", "rA", "alpha", perm.Baseline{View: perm.Allow})

	channels, err := m.Channels(ctx, "ws1")
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, "c1", channels[0].ID)
	assert.Equal(t, "c2", channels[1].ID)

	roles, err := m.Roles(ctx, "ws1")
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "rA", roles[0].ID)

	everyone, err := m.EveryoneRole(ctx, "ws1")
	require.NoError(t, err)
	assert.Equal(t, "rE", everyone.ID)
	assert.True(t, everyone.Everyone)
}

func TestMemoryRulesAreCopied(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.AddWorkspace("ws1", "rE")
	m.AddChannel("ws1", "c1", "general")
	m.SetRule("ws1", "c1", "rE", perm.Allow)

	rules, err := m.ChannelRules(ctx, "ws1", "c1")
	require.NoError(t, err)
	rules[0].View = perm.Deny

	// Mutating the returned set does not leak into the store.
	v, ok := m.Rule("ws1", "c1", "rE")
	require.True(t, ok)
	assert.Equal(t, perm.Allow, v)
}

func TestMemoryWriteCounters(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.AddWorkspace("ws1", "rE")
	m.AddChannel("ws1", "c1", "general")

	assert.Equal(t, 0, m.ChannelWrites("ws1", "c1"))
	require.NoError(t, m.SetChannelRules(ctx, "ws1", "c1", perm.RuleSet{{RoleID: "rE", View: perm.Deny}}))
	assert.Equal(t, 1, m.ChannelWrites("ws1", "c1"))

	assert.Equal(t, 0, m.RoleWrites("ws1", "rE"))
	require.NoError(t, m.SetRoleBaseline(ctx, "ws1", "rE", perm.Baseline{View: perm.Deny}))
	assert.Equal(t, 1, m.RoleWrites("ws1", "rE"))
}
