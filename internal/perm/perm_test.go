package perm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisibilityCodes(t *testing.T) {
	assert.Equal(t, Visibility(1), Allow)
	assert.Equal(t, Visibility(0), Unset)
	assert.Equal(t, Visibility(-1), Deny)
}

func TestVisibilityJSON(t *testing.T) {
	data, err := json.Marshal(Allow)
	require.NoError(t, err)
	assert.Equal(t, "1", string(data))

	var v Visibility
	require.NoError(t, json.Unmarshal([]byte("-1"), &v))
	assert.Equal(t, Deny, v)

	// Out-of-range codes are rejected at decode time.
	assert.Error(t, json.Unmarshal([]byte("2"), &v))
	assert.Error(t, json.Unmarshal([]byte(`"allow"`), &v))
}

func TestRuleSetFind(t *testing.T) {
	rs := RuleSet{
		{RoleID: "r1", View: Allow},
		{RoleID: "r2", View: Deny},
	}
	assert.Equal(t, 0, rs.Find("r1"))
	assert.Equal(t, 1, rs.Find("r2"))
	assert.Equal(t, -1, rs.Find("r3"))
}

func TestRuleSetCloneIsIndependent(t *testing.T) {
	rs := RuleSet{{RoleID: "r1", View: Allow}}
	clone := rs.Clone()
	clone[0].View = Deny
	assert.Equal(t, Allow, rs[0].View)
}
