package platform

import (
	"context"
	"sort"
	"sync"

	"github.com/mattjoyce/curfewd/internal/perm"
)

// Memory is an in-process AccessClient backed by maps. It exists for tests
// and for running the service without platform credentials; write calls are
// counted per entity so tests can assert on external traffic.
type Memory struct {
	mu         sync.Mutex
	workspaces map[string]*memWorkspace
}

type memWorkspace struct {
	channels map[string]*memChannel
	roles    map[string]*memRole
	everyone string
}

type memChannel struct {
	name      string
	rules     perm.RuleSet
	denied    bool
	writes    int
	readCalls int
}

type memRole struct {
	name     string
	everyone bool
	baseline perm.Baseline
	denied   bool
	writes   int
}

func NewMemory() *Memory {
	return &Memory{workspaces: map[string]*memWorkspace{}}
}

// --- seeding and inspection (not part of AccessClient) ---

// AddWorkspace creates a workspace with its catch-all role.
func (m *Memory) AddWorkspace(workspaceID, everyoneRoleID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workspaces[workspaceID] = &memWorkspace{
		channels: map[string]*memChannel{},
		roles: map[string]*memRole{
			everyoneRoleID: {name: "everyone", everyone: true, baseline: perm.Baseline{View: perm.Allow}},
		},
		everyone: everyoneRoleID,
	}
}

func (m *Memory) AddChannel(workspaceID, channelID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ws := m.workspaces[workspaceID]; ws != nil {
		ws.channels[channelID] = &memChannel{name: name}
	}
}

func (m *Memory) AddRole(workspaceID, roleID, name string, baseline perm.Baseline) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ws := m.workspaces[workspaceID]; ws != nil {
		ws.roles[roleID] = &memRole{name: name, baseline: baseline}
	}
}

func (m *Memory) SetRule(workspaceID, channelID, roleID string, view perm.Visibility) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := m.channel(workspaceID, channelID)
	if ch == nil {
		return
	}
	if i := ch.rules.Find(roleID); i >= 0 {
		ch.rules[i].View = view
		return
	}
	ch.rules = append(ch.rules, perm.AccessRule{RoleID: roleID, View: view})
}

func (m *Memory) RemoveChannel(workspaceID, channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ws := m.workspaces[workspaceID]; ws != nil {
		delete(ws.channels, channelID)
	}
}

func (m *Memory) RemoveRole(workspaceID, roleID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ws := m.workspaces[workspaceID]; ws != nil {
		delete(ws.roles, roleID)
	}
}

func (m *Memory) RemoveRule(workspaceID, channelID, roleID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := m.channel(workspaceID, channelID)
	if ch == nil {
		return
	}
	if i := ch.rules.Find(roleID); i >= 0 {
		ch.rules = append(ch.rules[:i], ch.rules[i+1:]...)
	}
}

// DenyChannelWrites makes SetChannelRules fail with ErrPermissionDenied.
func (m *Memory) DenyChannelWrites(workspaceID, channelID string, denied bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch := m.channel(workspaceID, channelID); ch != nil {
		ch.denied = denied
	}
}

// DenyRoleWrites makes SetRoleBaseline fail with ErrPermissionDenied.
func (m *Memory) DenyRoleWrites(workspaceID, roleID string, denied bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ws := m.workspaces[workspaceID]; ws != nil {
		if r := ws.roles[roleID]; r != nil {
			r.denied = denied
		}
	}
}

// ChannelWrites reports how many SetChannelRules calls reached the channel.
func (m *Memory) ChannelWrites(workspaceID, channelID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch := m.channel(workspaceID, channelID); ch != nil {
		return ch.writes
	}
	return 0
}

// RoleWrites reports how many SetRoleBaseline calls reached the role.
func (m *Memory) RoleWrites(workspaceID, roleID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ws := m.workspaces[workspaceID]; ws != nil {
		if r := ws.roles[roleID]; r != nil {
			return r.writes
		}
	}
	return 0
}

// Rule returns the current visibility for (channel, role) and whether an
// explicit rule exists.
func (m *Memory) Rule(workspaceID, channelID, roleID string) (perm.Visibility, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := m.channel(workspaceID, channelID)
	if ch == nil {
		return perm.Unset, false
	}
	if i := ch.rules.Find(roleID); i >= 0 {
		return ch.rules[i].View, true
	}
	return perm.Unset, false
}

// Baseline returns the current baseline for a role.
func (m *Memory) Baseline(workspaceID, roleID string) (perm.Baseline, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ws := m.workspaces[workspaceID]; ws != nil {
		if r := ws.roles[roleID]; r != nil {
			return r.baseline, true
		}
	}
	return perm.Baseline{}, false
}

func (m *Memory) channel(workspaceID, channelID string) *memChannel {
	ws := m.workspaces[workspaceID]
	if ws == nil {
		return nil
	}
	return ws.channels[channelID]
}

// --- AccessClient ---

func (m *Memory) Channels(_ context.Context, workspaceID string) ([]Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws := m.workspaces[workspaceID]
	if ws == nil {
		return nil, ErrNotFound
	}
	out := make([]Channel, 0, len(ws.channels))
	for id, ch := range ws.channels {
		out = append(out, Channel{ID: id, Name: ch.name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Roles(_ context.Context, workspaceID string) ([]Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws := m.workspaces[workspaceID]
	if ws == nil {
		return nil, ErrNotFound
	}
	out := make([]Role, 0, len(ws.roles))
	for id, r := range ws.roles {
		out = append(out, Role{ID: id, Name: r.name, Everyone: r.everyone})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) EveryoneRole(_ context.Context, workspaceID string) (Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws := m.workspaces[workspaceID]
	if ws == nil {
		return Role{}, ErrNotFound
	}
	r := ws.roles[ws.everyone]
	if r == nil {
		return Role{}, ErrNotFound
	}
	return Role{ID: ws.everyone, Name: r.name, Everyone: true}, nil
}

func (m *Memory) ChannelRules(_ context.Context, workspaceID, channelID string) (perm.RuleSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := m.channel(workspaceID, channelID)
	if ch == nil {
		return nil, ErrNotFound
	}
	ch.readCalls++
	return ch.rules.Clone(), nil
}

func (m *Memory) SetChannelRules(_ context.Context, workspaceID, channelID string, rules perm.RuleSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := m.channel(workspaceID, channelID)
	if ch == nil {
		return ErrNotFound
	}
	if ch.denied {
		return ErrPermissionDenied
	}
	ch.writes++
	ch.rules = rules.Clone()
	return nil
}

func (m *Memory) RoleBaseline(_ context.Context, workspaceID, roleID string) (perm.Baseline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws := m.workspaces[workspaceID]
	if ws == nil {
		return perm.Baseline{}, ErrNotFound
	}
	r := ws.roles[roleID]
	if r == nil {
		return perm.Baseline{}, ErrNotFound
	}
	return r.baseline, nil
}

func (m *Memory) SetRoleBaseline(_ context.Context, workspaceID, roleID string, baseline perm.Baseline) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws := m.workspaces[workspaceID]
	if ws == nil {
		return ErrNotFound
	}
	r := ws.roles[roleID]
	if r == nil {
		return ErrNotFound
	}
	if r.denied {
		return ErrPermissionDenied
	}
	r.writes++
	r.baseline = baseline
	return nil
}
