package engine

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/curfewd/internal/events"
	"github.com/mattjoyce/curfewd/internal/perm"
	"github.com/mattjoyce/curfewd/internal/platform"
	"github.com/mattjoyce/curfewd/internal/platform/mocks"
	"github.com/mattjoyce/curfewd/internal/transcript"
)

// NewTestSlogger creates a *slog.Logger writing into a capture buffer.
func NewTestSlogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), &buf
}

// fakeStore records persistence calls without a database.
type fakeStore struct {
	saved    []*transcript.Transcript
	reopens  []time.Time
	saveErr  error
	stampErr error
}

func (f *fakeStore) Save(_ context.Context, t *transcript.Transcript) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, t)
	return nil
}

func (f *fakeStore) StampReopen(_ context.Context, _ string, at time.Time) error {
	if f.stampErr != nil {
		return f.stampErr
	}
	f.reopens = append(f.reopens, at)
	return nil
}

func newTestEngine(client platform.AccessClient, store TranscriptStore) *Engine {
	logger, _ := NewTestSlogger()
	e := New(client, store, events.NewHub(16), logger, 0)
	e.sleep = func(time.Duration) {}
	return e
}

// seedWorkspace builds the canonical fixture: everyone role rE, member role
// rM, ignored role rI, channels c1 (everyone=Allow), c2 (everyone=Deny),
// c3 (no explicit rules).
func seedWorkspace(m *platform.Memory) {
	m.AddWorkspace("ws1", "rE")
	m.AddRole("ws1", "rM", "members", perm.Baseline{View: perm.Allow})
	m.AddRole("ws1", "rI", "moderators", perm.Baseline{View: perm.Allow})
	m.AddChannel("ws1", "c1", "general")
	m.AddChannel("ws1", "c2", "private")
	m.AddChannel("ws1", "c3", "lounge")
	m.SetRule("ws1", "c1", "rE", perm.Allow)
	m.SetRule("ws1", "c2", "rE", perm.Deny)
}

func TestLockdownRecordsPriorState(t *testing.T) {
	m := platform.NewMemory()
	seedWorkspace(m)
	store := &fakeStore{}
	e := newTestEngine(m, store)

	tr, err := e.Lockdown(context.Background(), "ws1", Params{}, Provenance{})
	require.NoError(t, err)

	// c1: everyone flipped Allow -> Deny, prior recorded.
	require.Len(t, tr.AffectedChannels["c1"], 1)
	assert.Equal(t, "rE", tr.AffectedChannels["c1"][0].RoleID)
	assert.Equal(t, perm.Allow, tr.AffectedChannels["c1"][0].Prior)

	// c2: everyone already Deny, nothing recorded and nothing written.
	assert.NotContains(t, tr.AffectedChannels, "c2")
	assert.Equal(t, 0, m.ChannelWrites("ws1", "c2"))

	// c3: no everyone rule existed, one is synthesized with Unset prior.
	require.Len(t, tr.AffectedChannels["c3"], 1)
	assert.Equal(t, perm.Unset, tr.AffectedChannels["c3"][0].Prior)

	// Visible state is fully denied.
	v, ok := m.Rule("ws1", "c1", "rE")
	require.True(t, ok)
	assert.Equal(t, perm.Deny, v)
	v, ok = m.Rule("ws1", "c3", "rE")
	require.True(t, ok)
	assert.Equal(t, perm.Deny, v)

	// Everyone baseline denied and recorded.
	assert.Contains(t, tr.AffectedRoles, "rE")
	b, _ := m.Baseline("ws1", "rE")
	assert.Equal(t, perm.Deny, b.View)

	// Transcript persisted exactly once.
	require.Len(t, store.saved, 1)
	assert.NotEmpty(t, tr.Meta.ID)
}

func TestLockdownThenReopenRoundTrip(t *testing.T) {
	m := platform.NewMemory()
	seedWorkspace(m)
	m.SetRule("ws1", "c1", "rM", perm.Allow)
	store := &fakeStore{}
	e := newTestEngine(m, store)

	params := Params{TargetRoles: []string{"rM"}}
	tr, err := e.Lockdown(context.Background(), "ws1", params, Provenance{})
	require.NoError(t, err)

	rep, err := e.Reopen(context.Background(), "ws1", tr, Provenance{})
	require.NoError(t, err)
	assert.True(t, rep.Clean())

	// Every recorded rule is back at its prior value.
	v, ok := m.Rule("ws1", "c1", "rE")
	require.True(t, ok)
	assert.Equal(t, perm.Allow, v)
	v, ok = m.Rule("ws1", "c1", "rM")
	require.True(t, ok)
	assert.Equal(t, perm.Allow, v)
	v, ok = m.Rule("ws1", "c3", "rE")
	require.True(t, ok)
	assert.Equal(t, perm.Unset, v)

	// Baselines restored to Allow.
	b, _ := m.Baseline("ws1", "rE")
	assert.Equal(t, perm.Allow, b.View)
	b, _ = m.Baseline("ws1", "rM")
	assert.Equal(t, perm.Allow, b.View)

	require.Len(t, store.reopens, 1)
}

func TestLockdownIsIdempotentOnWrites(t *testing.T) {
	m := platform.NewMemory()
	seedWorkspace(m)
	store := &fakeStore{}
	e := newTestEngine(m, store)

	_, err := e.Lockdown(context.Background(), "ws1", Params{}, Provenance{})
	require.NoError(t, err)
	writesAfterFirst := m.ChannelWrites("ws1", "c1") + m.ChannelWrites("ws1", "c2") + m.ChannelWrites("ws1", "c3")

	tr2, err := e.Lockdown(context.Background(), "ws1", Params{}, Provenance{})
	require.NoError(t, err)

	// Second run finds everything already denied: zero new channel writes
	// and an empty transcript (aside from persistence of the empty record).
	writesAfterSecond := m.ChannelWrites("ws1", "c1") + m.ChannelWrites("ws1", "c2") + m.ChannelWrites("ws1", "c3")
	assert.Equal(t, writesAfterFirst, writesAfterSecond)
	assert.Empty(t, tr2.AffectedChannels)
	assert.Empty(t, tr2.AffectedRoles)
}

func TestLockdownIgnoredRolesAndChannels(t *testing.T) {
	m := platform.NewMemory()
	seedWorkspace(m)
	m.SetRule("ws1", "c1", "rI", perm.Allow)
	store := &fakeStore{}
	e := newTestEngine(m, store)

	params := Params{
		TargetRoles:     []string{"rI"},
		IgnoredRoles:    []string{"rI"},
		IgnoredChannels: []string{"c3"},
	}
	tr, err := e.Lockdown(context.Background(), "ws1", params, Provenance{})
	require.NoError(t, err)

	// Ignored role wins over target listing; its rule and baseline survive.
	v, ok := m.Rule("ws1", "c1", "rI")
	require.True(t, ok)
	assert.Equal(t, perm.Allow, v)
	assert.NotContains(t, tr.AffectedRoles, "rI")
	b, _ := m.Baseline("ws1", "rI")
	assert.Equal(t, perm.Allow, b.View)

	// Ignored channel untouched.
	assert.NotContains(t, tr.AffectedChannels, "c3")
	assert.Equal(t, 0, m.ChannelWrites("ws1", "c3"))
	_, exists := m.Rule("ws1", "c3", "rE")
	assert.False(t, exists)
}

func TestLockdownIgnoreNeutral(t *testing.T) {
	m := platform.NewMemory()
	seedWorkspace(m)
	m.SetRule("ws1", "c1", "rM", perm.Unset)
	store := &fakeStore{}
	e := newTestEngine(m, store)

	params := Params{TargetRoles: []string{"rM"}, IgnoreNeutral: true}
	tr, err := e.Lockdown(context.Background(), "ws1", params, Provenance{})
	require.NoError(t, err)

	// Unset rules are left alone, including the synthesized everyone rule
	// on c3, so c3 sees no write at all.
	v, _ := m.Rule("ws1", "c1", "rM")
	assert.Equal(t, perm.Unset, v)
	assert.NotContains(t, tr.AffectedChannels, "c3")
	assert.Equal(t, 0, m.ChannelWrites("ws1", "c3"))

	// Explicit Allow is still flipped.
	require.Len(t, tr.AffectedChannels["c1"], 1)
	assert.Equal(t, "rE", tr.AffectedChannels["c1"][0].RoleID)
}

func TestLockdownDeniedChannelWriteDiscardsDiffs(t *testing.T) {
	m := platform.NewMemory()
	seedWorkspace(m)
	m.DenyChannelWrites("ws1", "c1", true)
	store := &fakeStore{}
	e := newTestEngine(m, store)

	tr, err := e.Lockdown(context.Background(), "ws1", Params{}, Provenance{})
	require.NoError(t, err)

	// The denied channel shows up in no_perms and claims no changes.
	assert.Contains(t, tr.NoPermsChannels, "c1")
	assert.NotContains(t, tr.AffectedChannels, "c1")

	// Its visible state is unchanged.
	v, _ := m.Rule("ws1", "c1", "rE")
	assert.Equal(t, perm.Allow, v)

	// Other channels still processed.
	assert.Contains(t, tr.AffectedChannels, "c3")
}

func TestLockdownDeniedBaselineWrite(t *testing.T) {
	m := platform.NewMemory()
	seedWorkspace(m)
	m.DenyRoleWrites("ws1", "rE", true)
	store := &fakeStore{}
	e := newTestEngine(m, store)

	tr, err := e.Lockdown(context.Background(), "ws1", Params{}, Provenance{})
	require.NoError(t, err)

	assert.Contains(t, tr.NoPermsRoles, "rE")
	assert.NotContains(t, tr.AffectedRoles, "rE")
	b, _ := m.Baseline("ws1", "rE")
	assert.Equal(t, perm.Allow, b.View)
}

func TestLockdownPersistFailureIsFatal(t *testing.T) {
	m := platform.NewMemory()
	seedWorkspace(m)
	store := &fakeStore{saveErr: assert.AnError}
	e := newTestEngine(m, store)

	_, err := e.Lockdown(context.Background(), "ws1", Params{}, Provenance{})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestReopenToleratesDrift(t *testing.T) {
	m := platform.NewMemory()
	seedWorkspace(m)
	m.SetRule("ws1", "c1", "rM", perm.Allow)
	store := &fakeStore{}
	e := newTestEngine(m, store)

	tr, err := e.Lockdown(context.Background(), "ws1", Params{TargetRoles: []string{"rM"}}, Provenance{})
	require.NoError(t, err)

	// Drift between lockdown and reopen: a channel and a role vanish, and
	// one recorded overwrite is deleted.
	m.RemoveChannel("ws1", "c3")
	m.RemoveRole("ws1", "rM")
	m.RemoveRule("ws1", "c1", "rE")

	rep, err := e.Reopen(context.Background(), "ws1", tr, Provenance{})
	require.NoError(t, err)

	assert.Equal(t, []string{"c3"}, rep.MissingChannels)
	assert.Equal(t, []string{"rM"}, rep.MissingRoles)
	assert.Equal(t, []string{"rE"}, rep.MissingOverwrites["c1"])
	assert.False(t, rep.Clean())

	// The deleted rule was not fabricated.
	_, exists := m.Rule("ws1", "c1", "rE")
	assert.False(t, exists)
}

func TestReopenDeniedWriteReported(t *testing.T) {
	m := platform.NewMemory()
	seedWorkspace(m)
	store := &fakeStore{}
	e := newTestEngine(m, store)

	tr, err := e.Lockdown(context.Background(), "ws1", Params{}, Provenance{})
	require.NoError(t, err)

	m.DenyChannelWrites("ws1", "c1", true)

	rep, err := e.Reopen(context.Background(), "ws1", tr, Provenance{})
	require.NoError(t, err)

	assert.Contains(t, rep.NoPermsChannels, "c1")
	// c1 stays denied; c3 restored.
	v, _ := m.Rule("ws1", "c1", "rE")
	assert.Equal(t, perm.Deny, v)
	v, _ = m.Rule("ws1", "c3", "rE")
	assert.Equal(t, perm.Unset, v)
}

func TestReopenRejectsMalformedTranscript(t *testing.T) {
	m := platform.NewMemory()
	seedWorkspace(m)
	store := &fakeStore{}
	e := newTestEngine(m, store)

	_, err := e.Reopen(context.Background(), "ws1", nil, Provenance{})
	assert.ErrorIs(t, err, transcript.ErrMalformed)

	bad := transcript.New("ws1")
	bad.AffectedChannels["c1"] = []transcript.RoleChange{
		{RoleID: "rE", Prior: perm.Allow},
		{RoleID: "rE", Prior: perm.Unset},
	}
	_, err = e.Reopen(context.Background(), "ws1", bad, Provenance{})
	assert.ErrorIs(t, err, transcript.ErrMalformed)

	// Nothing was written and no stamp recorded.
	assert.Equal(t, 0, m.ChannelWrites("ws1", "c1"))
	assert.Empty(t, store.reopens)
}

func TestReopenIsRepeatable(t *testing.T) {
	m := platform.NewMemory()
	seedWorkspace(m)
	store := &fakeStore{}
	e := newTestEngine(m, store)

	tr, err := e.Lockdown(context.Background(), "ws1", Params{}, Provenance{})
	require.NoError(t, err)

	_, err = e.Reopen(context.Background(), "ws1", tr, Provenance{})
	require.NoError(t, err)
	rep2, err := e.Reopen(context.Background(), "ws1", tr, Provenance{})
	require.NoError(t, err)

	// The transcript is replayable: a second pass still restores the same
	// prior values and reports cleanly.
	assert.True(t, rep2.Clean())
	v, _ := m.Rule("ws1", "c1", "rE")
	assert.Equal(t, perm.Allow, v)
}

func TestConcurrentLockdownsSerializePerWorkspace(t *testing.T) {
	m := platform.NewMemory()
	seedWorkspace(m)
	store := &fakeStore{}
	e := newTestEngine(m, store)

	const callers = 8
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Lockdown(context.Background(), "ws1", Params{}, Provenance{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// The per-workspace lock serializes the invocations: whichever caller
	// runs first flips the rules, every later one finds the deny state
	// already in place and issues no external write.
	assert.Equal(t, 1, m.ChannelWrites("ws1", "c1"))
	assert.Equal(t, 1, m.ChannelWrites("ws1", "c3"))
	assert.Equal(t, 0, m.ChannelWrites("ws1", "c2"))
	assert.Equal(t, 1, m.RoleWrites("ws1", "rE"))

	// Every invocation still reached persistence.
	assert.Len(t, store.saved, callers)
}

func TestConcurrentLockdownAndReopenSerialize(t *testing.T) {
	m := platform.NewMemory()
	seedWorkspace(m)
	store := &fakeStore{}
	e := newTestEngine(m, store)

	tr, err := e.Lockdown(context.Background(), "ws1", Params{}, Provenance{})
	require.NoError(t, err)

	// Reopen and a second lockdown race on the same workspace. Either order
	// is legal; the lock guarantees each sees the other's completed state,
	// so c1 ends at one of the two rest states, never a torn mix.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := e.Reopen(context.Background(), "ws1", tr, Provenance{})
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := e.Lockdown(context.Background(), "ws1", Params{}, Provenance{})
		assert.NoError(t, err)
	}()
	wg.Wait()

	v, ok := m.Rule("ws1", "c1", "rE")
	require.True(t, ok)
	assert.Contains(t, []perm.Visibility{perm.Allow, perm.Deny}, v)
	require.Len(t, store.reopens, 1)
	assert.Len(t, store.saved, 2)
}

func TestLockdownFatalOnListingFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockAccessClient(ctrl)
	e := newTestEngine(client, &fakeStore{})
	ctx := context.Background()

	// Catch-all role unresolvable: nothing proceeds.
	client.EXPECT().EveryoneRole(gomock.Any(), "ws1").Return(platform.Role{}, platform.ErrNotFound)
	_, err := e.Lockdown(ctx, "ws1", Params{}, Provenance{})
	assert.ErrorIs(t, err, platform.ErrNotFound)

	// Channel listing failure is fatal too.
	client.EXPECT().EveryoneRole(gomock.Any(), "ws1").Return(platform.Role{ID: "rE", Everyone: true}, nil)
	client.EXPECT().Channels(gomock.Any(), "ws1").Return(nil, platform.ErrPermissionDenied)
	_, err = e.Lockdown(ctx, "ws1", Params{}, Provenance{})
	assert.ErrorIs(t, err, platform.ErrPermissionDenied)
}

func TestReopenFatalOnRoleListingFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockAccessClient(ctrl)
	e := newTestEngine(client, &fakeStore{})

	client.EXPECT().Roles(gomock.Any(), "ws1").Return(nil, platform.ErrPermissionDenied)
	_, err := e.Reopen(context.Background(), "ws1", transcript.New("ws1"), Provenance{})
	assert.ErrorIs(t, err, platform.ErrPermissionDenied)
}

func TestLockdownPacingBudget(t *testing.T) {
	m := platform.NewMemory()
	seedWorkspace(m)
	store := &fakeStore{}
	logger, _ := NewTestSlogger()
	e := New(m, store, events.NewHub(16), logger, 2)

	var slept time.Duration
	e.sleep = func(d time.Duration) { slept += d }

	tr, err := e.Lockdown(context.Background(), "ws1", Params{}, Provenance{})
	require.NoError(t, err)

	// Each write batch sleeps batch/rate: 2 channel batches of 1 change
	// plus 1 baseline write at 2 calls/sec = 1.5s total.
	writes := 0
	for _, changes := range tr.AffectedChannels {
		writes += len(changes)
	}
	writes += len(tr.AffectedRoles)
	assert.Equal(t, time.Duration(float64(writes)/2*float64(time.Second)), slept)
}
