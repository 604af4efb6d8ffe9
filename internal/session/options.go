package session

import (
	"math/rand/v2"
	"time"

	"github.com/specialistvlad/blockgridgo/internal/event"
	"github.com/specialistvlad/blockgridgo/internal/generator"
	"github.com/specialistvlad/blockgridgo/internal/interpreter"
	"github.com/specialistvlad/blockgridgo/internal/program"
	"github.com/specialistvlad/blockgridgo/internal/scheduler"
)

// Config is the rule set of a session. Zero fields take the package
// defaults of the component they configure.
type Config struct {
	Generator   generator.Options
	MoveLimit   int
	Limits      interpreter.Limits
	MaxAttempts int
	Modes       []program.Mode
	StepDelay   time.Duration
}

// Option customizes a Session.
type Option func(*Session)

// WithSink sends the event stream to sink.
func WithSink(sink event.Sink) Option {
	return func(s *Session) { s.out = sink }
}

// WithScheduler replaces the pacing scheduler built from Config.StepDelay.
func WithScheduler(sched scheduler.Scheduler) Option {
	return func(s *Session) { s.sched = sched }
}

// WithRandSource makes unseeded puzzle generation draw from src.
func WithRandSource(src rand.Source) Option {
	return func(s *Session) { s.src = src }
}

// WithClock replaces time.Now for attempt and event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithID fixes the session id instead of generating one.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithPrivileged starts the session as a privileged player.
func WithPrivileged(privileged bool) Option {
	return func(s *Session) { s.privileged = privileged }
}
