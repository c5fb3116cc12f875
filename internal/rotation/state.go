package rotation

import (
	"fmt"
	"time"
)

// State represents the current step of a rotation run.
type State string

const (
	// StateValidating resolves profiles and checks they agree on one key.
	StateValidating State = "validating"

	// StateAuthenticating confirms the resolved key pair authenticates.
	StateAuthenticating State = "authenticating"

	// StateCountChecking enforces the one-live-key invariant.
	StateCountChecking State = "count_checking"

	// StateCreating mints the replacement key.
	StateCreating State = "creating"

	// StateVerifying polls until the new key is usable.
	StateVerifying State = "verifying"

	// StatePropagating writes the new key into every profile.
	StatePropagating State = "propagating"

	// StateRetiring deletes the old key.
	StateRetiring State = "retiring"

	// StateDone indicates the rotation completed.
	StateDone State = "done"

	// StateRolledBack indicates verification failed, the new key was
	// deleted and the old key is still active. The only state reachable
	// by a back-edge; no other step rolls back.
	StateRolledBack State = "rolled_back"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// IsTerminal returns true if this is a terminal state.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateRolledBack
}

// ValidTransitions defines the allowed step order. The single conditional
// back-edge is Verifying → RolledBack.
var ValidTransitions = map[State][]State{
	StateValidating:     {StateAuthenticating},
	StateAuthenticating: {StateCountChecking},
	StateCountChecking:  {StateCreating},
	StateCreating:       {StateVerifying},
	StateVerifying:      {StatePropagating, StateRolledBack},
	StatePropagating:    {StateRetiring},
	StateRetiring:       {StateDone},
}

// CanTransitionTo checks if a transition from the current state is valid.
func (s State) CanTransitionTo(next State) bool {
	for _, valid := range ValidTransitions[s] {
		if valid == next {
			return true
		}
	}
	return false
}

// Transition records one step boundary of a run.
type Transition struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	At   time.Time `json:"at"`
}

// machine tracks the current state and the transitions taken. An invalid
// transition is a bug in the orchestrator, not a runtime condition.
type machine struct {
	current     State
	transitions []Transition
}

func newMachine() *machine {
	return &machine{current: StateValidating}
}

func (m *machine) to(next State) error {
	if !m.current.CanTransitionTo(next) {
		return fmt.Errorf("invalid state transition %s → %s", m.current, next)
	}
	m.transitions = append(m.transitions, Transition{
		From: m.current,
		To:   next,
		At:   time.Now(),
	})
	m.current = next
	return nil
}
