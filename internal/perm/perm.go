// Package perm holds the tri-state visibility model shared by the engine,
// the transcript codec, and the platform client.
package perm

import (
	"encoding/json"
	"fmt"
)

// Visibility is the tri-state reading of a view permission. Unset means "no
// explicit opinion" and is distinct from Allow; collapsing the two into a
// boolean loses the information the reopen path needs.
//
// The integer values are the persisted wire codes and must not change.
type Visibility int

const (
	Allow Visibility = 1
	Unset Visibility = 0
	Deny  Visibility = -1
)

func (v Visibility) Valid() bool {
	return v == Allow || v == Unset || v == Deny
}

func (v Visibility) String() string {
	switch v {
	case Allow:
		return "allow"
	case Unset:
		return "unset"
	case Deny:
		return "deny"
	default:
		return fmt.Sprintf("visibility(%d)", int(v))
	}
}

func (v Visibility) MarshalJSON() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("invalid visibility code %d", int(v))
	}
	return json.Marshal(int(v))
}

func (v *Visibility) UnmarshalJSON(data []byte) error {
	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return fmt.Errorf("visibility must be an integer code: %w", err)
	}
	parsed := Visibility(code)
	if !parsed.Valid() {
		return fmt.Errorf("visibility code %d out of range {-1, 0, 1}", code)
	}
	*v = parsed
	return nil
}

// AccessRule is the explicit visibility override for one (channel, role)
// pair. Rules for non-role grantees never appear here; the platform client
// only surfaces role-keyed rules.
type AccessRule struct {
	RoleID string
	View   Visibility
}

// RuleSet is a channel's full set of role-keyed rules, unique per role.
type RuleSet []AccessRule

// Find returns the index of the rule for roleID, or -1.
func (rs RuleSet) Find(roleID string) int {
	for i := range rs {
		if rs[i].RoleID == roleID {
			return i
		}
	}
	return -1
}

// Clone returns a copy safe to mutate without aliasing the receiver.
func (rs RuleSet) Clone() RuleSet {
	out := make(RuleSet, len(rs))
	copy(out, rs)
	return out
}

// Baseline is a role's workspace-wide default capability set. Only the
// visibility flag participates in lockdown/reopen.
type Baseline struct {
	View Visibility
}
