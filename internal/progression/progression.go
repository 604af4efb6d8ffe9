// Package progression tracks the curriculum of a non-privileged player: the
// ordered modes, the attempts spent in each, and the lock that ends play once
// the last mode's quota is used up.
//
// Every function here is pure. A State is a value; Record and Enforce return
// the next State rather than mutating their input.
package progression

import (
	"fmt"
	"slices"
	"time"

	"github.com/specialistvlad/blockgridgo/internal/program"
)

const (
	DefaultMaxAttempts = 4
	// Unlimited is reported as the remaining attempts of privileged players.
	Unlimited = -1
)

// Attempt is one completed run.
type Attempt struct {
	Success bool      `json:"success"`
	Moves   int       `json:"moves"`
	At      time.Time `json:"at"`
}

// State is the progression of one session.
type State struct {
	Modes       []program.Mode
	Index       int
	Attempts    map[program.Mode][]Attempt
	MaxAttempts int
	Locked      bool
}

// NewState starts at the first mode. An empty mode list selects
// program.DefaultModes and a non-positive quota selects DefaultMaxAttempts.
func NewState(modes []program.Mode, maxAttempts int) State {
	if len(modes) == 0 {
		modes = program.DefaultModes()
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return State{
		Modes:       slices.Clone(modes),
		Attempts:    make(map[program.Mode][]Attempt, len(modes)),
		MaxAttempts: maxAttempts,
	}
}

// Mode returns the mode the player is currently confined to.
func (s State) Mode() program.Mode {
	return s.Modes[s.Index]
}

// Used returns how many attempts were spent in m.
func (s State) Used(m program.Mode) int {
	return len(s.Attempts[m])
}

// Remaining returns the attempts left in m. Modes outside the sequence and
// every mode once locked have none.
func (s State) Remaining(m program.Mode) int {
	if s.Locked || !slices.Contains(s.Modes, m) {
		return 0
	}
	return max(s.MaxAttempts-s.Used(m), 0)
}

// Last reports whether the current mode is the final one.
func (s State) Last() bool {
	return s.Index == len(s.Modes)-1
}

// TransitionKind tags what a progression step did.
type TransitionKind int

const (
	Stayed TransitionKind = iota
	Advanced
	Locked
)

func (k TransitionKind) String() string {
	switch k {
	case Stayed:
		return "stayed"
	case Advanced:
		return "advanced"
	case Locked:
		return "locked"
	default:
		return fmt.Sprintf("transition(%d)", int(k))
	}
}

// Transition describes a mode change, if any.
type Transition struct {
	Kind TransitionKind
	From program.Mode
	To   program.Mode
}

// Record appends a to the current mode. When that fills the quota the state
// advances to the next mode, or locks on the last one. Recording on a locked
// state changes nothing.
func Record(s State, a Attempt) (State, Transition) {
	if s.Locked {
		return s, Transition{Kind: Stayed, From: s.Mode(), To: s.Mode()}
	}
	next := s.Clone()
	m := next.Mode()
	next.Attempts[m] = append(next.Attempts[m], a)
	return Enforce(next)
}

// Enforce applies the quota to the current mode without recording anything.
// It is what a run request checks first.
func Enforce(s State) (State, Transition) {
	from := s.Mode()
	if s.Locked || s.Used(from) < s.MaxAttempts {
		return s, Transition{Kind: Stayed, From: from, To: from}
	}
	next := s.Clone()
	if next.Last() {
		next.Locked = true
		return next, Transition{Kind: Locked, From: from, To: from}
	}
	next.Index++
	return next, Transition{Kind: Advanced, From: from, To: next.Mode()}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Modes = slices.Clone(s.Modes)
	out.Attempts = make(map[program.Mode][]Attempt, len(s.Attempts))
	for m, list := range s.Attempts {
		out.Attempts[m] = slices.Clone(list)
	}
	return out
}
