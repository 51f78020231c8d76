package transcript

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/curfewd/internal/perm"
)

func TestRoleChangeWireFormat(t *testing.T) {
	rc := RoleChange{RoleID: "r1", Prior: perm.Allow}
	data, err := json.Marshal(rc)
	require.NoError(t, err)
	assert.JSONEq(t, `["r1", 1]`, string(data))

	var back RoleChange
	require.NoError(t, json.Unmarshal([]byte(`["r2", -1]`), &back))
	assert.Equal(t, "r2", back.RoleID)
	assert.Equal(t, perm.Deny, back.Prior)
}

func TestRoleChangeRejectsBadPairs(t *testing.T) {
	var rc RoleChange
	assert.Error(t, json.Unmarshal([]byte(`["r1"]`), &rc))
	assert.Error(t, json.Unmarshal([]byte(`["r1", 0, 1]`), &rc))
	assert.Error(t, json.Unmarshal([]byte(`["", 1]`), &rc))
	assert.Error(t, json.Unmarshal([]byte(`{"role":"r1"}`), &rc))
}

func TestDecodeRoundTrip(t *testing.T) {
	at := time.Date(2026, 8, 20, 22, 0, 0, 0, time.UTC)
	orig := New("ws1")
	orig.AffectedChannels["c1"] = []RoleChange{
		{RoleID: "rE", Prior: perm.Allow},
		{RoleID: "rM", Prior: perm.Unset},
	}
	orig.AffectedRoles = []string{"rE"}
	orig.NoPermsChannels = []string{"c9"}
	orig.Meta = Meta{ID: "t-1", Auto: true, ScheduledAt: &at, CompletedAt: at}

	data, err := orig.Encode()
	require.NoError(t, err)

	back, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, orig.AffectedChannels, back.AffectedChannels)
	assert.Equal(t, orig.AffectedRoles, back.AffectedRoles)
	assert.Equal(t, orig.NoPermsChannels, back.NoPermsChannels)
	assert.True(t, back.Meta.Auto)
	require.NotNil(t, back.Meta.ScheduledAt)
	assert.True(t, at.Equal(*back.Meta.ScheduledAt))
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":           `{`,
		"unknown field":      `{"affected_channels":{},"affected_roles":[],"no_perms_channels":[],"no_perms_roles":[],"meta":{"auto":false,"completed_at":"2026-08-20T22:00:00Z"},"extra":1}`,
		"missing channels":   `{"affected_roles":[],"meta":{"auto":false,"completed_at":"2026-08-20T22:00:00Z"}}`,
		"out of range code":  `{"affected_channels":{"c1":[["r1",3]]},"affected_roles":[],"no_perms_channels":[],"no_perms_roles":[],"meta":{"auto":false,"completed_at":"2026-08-20T22:00:00Z"}}`,
		"empty role id":      `{"affected_channels":{"c1":[["",1]]},"affected_roles":[],"no_perms_channels":[],"no_perms_roles":[],"meta":{"auto":false,"completed_at":"2026-08-20T22:00:00Z"}}`,
		"duplicate role":     `{"affected_channels":{"c1":[["r1",1],["r1",0]]},"affected_roles":[],"no_perms_channels":[],"no_perms_roles":[],"meta":{"auto":false,"completed_at":"2026-08-20T22:00:00Z"}}`,
		"empty channel id":   `{"affected_channels":{"":[["r1",1]]},"affected_roles":[],"no_perms_channels":[],"no_perms_roles":[],"meta":{"auto":false,"completed_at":"2026-08-20T22:00:00Z"}}`,
		"empty role listed":  `{"affected_channels":{},"affected_roles":[""],"no_perms_channels":[],"no_perms_roles":[],"meta":{"auto":false,"completed_at":"2026-08-20T22:00:00Z"}}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(raw))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestEmptyAndClean(t *testing.T) {
	tr := New("ws1")
	assert.True(t, tr.Empty())
	tr.AffectedRoles = []string{"rE"}
	assert.False(t, tr.Empty())

	rep := NewReport("ws1")
	assert.True(t, rep.Clean())
	rep.MissingOverwrites["c1"] = []string{"r1"}
	assert.False(t, rep.Clean())
}
