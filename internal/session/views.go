package session

import (
	"github.com/specialistvlad/blockgridgo/internal/program"
	"github.com/specialistvlad/blockgridgo/internal/progression"
	"github.com/specialistvlad/blockgridgo/internal/world"
)

// Snapshot returns the current board, or false before the first puzzle.
func (s *Session) Snapshot() (world.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.world == nil {
		return world.Snapshot{}, false
	}
	return s.world.Snapshot(), true
}

// Layout returns the current puzzle, or false before the first puzzle.
func (s *Session) Layout() (world.Layout, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.world == nil {
		return world.Layout{}, false
	}
	return s.world.Layout(), true
}

// Program returns the block tree as data.
func (s *Session) Program() []program.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prog.Views()
}

func (s *Session) Mode() program.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session) State() RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

func (s *Session) Privileged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.privileged
}

// Locked reports whether the player has run out of attempts for good.
// Privileged players are never locked.
func (s *Session) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.privileged && s.progress.Locked
}

// AttemptsRemaining returns the runs left in m, or progression.Unlimited for
// privileged players.
func (s *Session) AttemptsRemaining(m program.Mode) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.privileged {
		return progression.Unlimited
	}
	return s.progress.Remaining(m)
}

// Progress returns a copy of the progression state.
func (s *Session) Progress() progression.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.Clone()
}
