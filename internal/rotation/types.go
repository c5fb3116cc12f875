package rotation

import (
	"strings"
	"time"
)

// DefaultProfile is rotated when no profile is named.
const DefaultProfile = "default"

// ProfileSet is an ordered, duplicate-free sequence of profile names
// targeted by one rotation. All members must reference the same identity.
type ProfileSet []string

// ParseProfileSet splits a comma-separated profile list into a ProfileSet,
// dropping empty elements and duplicates while preserving order. Embedded
// whitespace is kept verbatim. An empty input yields the default profile.
func ParseProfileSet(raw string) ProfileSet {
	var set ProfileSet
	seen := make(map[string]bool)
	for _, name := range strings.Split(raw, ",") {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		set = append(set, name)
	}
	if len(set) == 0 {
		return ProfileSet{DefaultProfile}
	}
	return set
}

// String joins the set back into its comma-separated form.
func (p ProfileSet) String() string {
	return strings.Join(p, ",")
}

// Status is the terminal outcome of a rotation run.
type Status string

const (
	// StatusSucceeded: old key deleted, all profiles hold the new key.
	StatusSucceeded Status = "succeeded"

	// StatusRolledBack: verification failed; the new key was deleted and
	// the old key remains active. The credential set equals the one the
	// run started with.
	StatusRolledBack Status = "rolled_back"

	// StatusFailed: the run stopped in its last verified-consistent
	// state; the error names the step that failed.
	StatusFailed Status = "failed"
)

// Result is the terminal outcome of one rotation run.
type Result struct {
	Status      Status       `json:"status"`
	Profiles    []string     `json:"profiles"`
	OldKeyID    string       `json:"old_key_id,omitempty"`
	NewKeyID    string       `json:"new_key_id,omitempty"`
	Warnings    []string     `json:"warnings,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
	Transitions []Transition `json:"transitions,omitempty"`
}
