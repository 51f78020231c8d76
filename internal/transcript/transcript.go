// Package transcript defines the durable record a lockdown leaves behind
// and the report a reopen produces. The persisted JSON shape is a stable
// interchange format: transcripts exported from one deployment must reopen
// on another, so field names and the tri-state codes are frozen.
package transcript

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattjoyce/curfewd/internal/perm"
)

// ErrMalformed marks an externally supplied transcript that fails shape
// validation. Nothing is mutated when decoding fails.
var ErrMalformed = errors.New("malformed transcript")

// RoleChange records one flipped rule: the role and the visibility it had
// before lockdown set it to deny. Encoded on the wire as a two-element
// array ["role-id", code].
type RoleChange struct {
	RoleID string
	Prior  perm.Visibility
}

func (rc RoleChange) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{rc.RoleID, rc.Prior})
}

func (rc *RoleChange) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("rule change must be an array: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("rule change must have exactly 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &rc.RoleID); err != nil {
		return fmt.Errorf("rule change role id: %w", err)
	}
	if rc.RoleID == "" {
		return fmt.Errorf("rule change role id is empty")
	}
	if err := json.Unmarshal(pair[1], &rc.Prior); err != nil {
		return fmt.Errorf("rule change prior value: %w", err)
	}
	return nil
}

// Meta carries trigger provenance and the completion timestamp.
type Meta struct {
	ID          string     `json:"id,omitempty"`
	Auto        bool       `json:"auto"`
	OperatorID  string     `json:"operator_id,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_timestamp,omitempty"`
	CompletedAt time.Time  `json:"completed_at"`
}

// Transcript is the minimal replayable record of one lockdown run. It is
// overwritten, never appended, by the next lockdown of the same workspace.
type Transcript struct {
	// WorkspaceID is storage keying, not part of the portable shape.
	WorkspaceID string `json:"-"`

	AffectedChannels map[string][]RoleChange `json:"affected_channels"`
	AffectedRoles    []string                `json:"affected_roles"`
	NoPermsChannels  []string                `json:"no_perms_channels"`
	NoPermsRoles     []string                `json:"no_perms_roles"`
	Meta             Meta                    `json:"meta"`
}

// New returns an empty transcript with all collections allocated.
func New(workspaceID string) *Transcript {
	return &Transcript{
		WorkspaceID:      workspaceID,
		AffectedChannels: map[string][]RoleChange{},
		AffectedRoles:    []string{},
		NoPermsChannels:  []string{},
		NoPermsRoles:     []string{},
	}
}

// Decode parses and validates a portable transcript. Unknown fields and
// out-of-range visibility codes are rejected; errors wrap ErrMalformed.
func Decode(data []byte) (*Transcript, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var t Transcript
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the structural invariants Decode relies on. It is also
// run on transcripts arriving pre-parsed from the API layer.
func (t *Transcript) Validate() error {
	if t.AffectedChannels == nil {
		return fmt.Errorf("%w: affected_channels is missing", ErrMalformed)
	}
	for channelID, changes := range t.AffectedChannels {
		if channelID == "" {
			return fmt.Errorf("%w: empty channel id in affected_channels", ErrMalformed)
		}
		seen := make(map[string]bool, len(changes))
		for _, rc := range changes {
			if rc.RoleID == "" {
				return fmt.Errorf("%w: empty role id under channel %s", ErrMalformed, channelID)
			}
			if !rc.Prior.Valid() {
				return fmt.Errorf("%w: invalid prior code for role %s", ErrMalformed, rc.RoleID)
			}
			if seen[rc.RoleID] {
				return fmt.Errorf("%w: duplicate role %s under channel %s", ErrMalformed, rc.RoleID, channelID)
			}
			seen[rc.RoleID] = true
		}
	}
	for _, roleID := range t.AffectedRoles {
		if roleID == "" {
			return fmt.Errorf("%w: empty role id in affected_roles", ErrMalformed)
		}
	}
	return nil
}

// Encode renders the portable JSON form.
func (t *Transcript) Encode() ([]byte, error) {
	return json.Marshal(t)
}

// Empty reports whether the lockdown changed nothing at all.
func (t *Transcript) Empty() bool {
	return len(t.AffectedChannels) == 0 && len(t.AffectedRoles) == 0 &&
		len(t.NoPermsChannels) == 0 && len(t.NoPermsRoles) == 0
}

// Report is the outcome of a reopen: what was restored, what had drifted
// away, and what could not be reached. Drift is reported, never guessed
// around.
type Report struct {
	WorkspaceID string `json:"-"`

	RestoredChannels int `json:"restored_channels"`
	RestoredRoles    int `json:"restored_roles"`

	MissingChannels   []string            `json:"missing_channels"`
	MissingRoles      []string            `json:"missing_roles"`
	MissingOverwrites map[string][]string `json:"missing_overwrites"`

	NoPermsChannels []string `json:"no_perms_channels"`
	NoPermsRoles    []string `json:"no_perms_roles"`

	Meta Meta `json:"meta"`
}

func NewReport(workspaceID string) *Report {
	return &Report{
		WorkspaceID:       workspaceID,
		MissingChannels:   []string{},
		MissingRoles:      []string{},
		MissingOverwrites: map[string][]string{},
		NoPermsChannels:   []string{},
		NoPermsRoles:      []string{},
	}
}

// Clean reports whether the reopen saw no drift and no denied writes.
func (r *Report) Clean() bool {
	return len(r.MissingChannels) == 0 && len(r.MissingRoles) == 0 &&
		len(r.MissingOverwrites) == 0 &&
		len(r.NoPermsChannels) == 0 && len(r.NoPermsRoles) == 0
}
