// Package event defines the outbound stream a session produces for renderers,
// loggers and relays, and a few sinks to consume it.
package event

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/blockgridgo/internal/program"
	"github.com/specialistvlad/blockgridgo/internal/world"
)

// Kind tags an event.
type Kind string

const (
	Moved      Kind = "moved"
	Blocked    Kind = "blocked"
	Turned     Kind = "turned"
	Won        Kind = "won"
	Lost       Kind = "lost"
	Diagnostic Kind = "diagnostic"
	Board      Kind = "board"
)

// Terminal reports whether the kind ends a run.
func (k Kind) Terminal() bool { return k == Won || k == Lost }

// Event is one entry of the stream. Board is set on every kind that follows
// a world mutation, and on Board events themselves.
type Event struct {
	Kind    Kind            `json:"kind"`
	Session string          `json:"session,omitempty"`
	Seq     uint64          `json:"seq"`
	Node    program.ID      `json:"node,omitempty"`
	Command string          `json:"command,omitempty"`
	Board   *world.Snapshot `json:"board,omitempty"`
	Message string          `json:"message,omitempty"`
	Time    time.Time       `json:"time"`
}

func (e Event) String() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("#%d %s: %s", e.Seq, e.Kind, e.Message)
	case e.Command != "":
		return fmt.Sprintf("#%d %s (%s)", e.Seq, e.Kind, e.Command)
	default:
		return fmt.Sprintf("#%d %s", e.Seq, e.Kind)
	}
}

// Sink consumes events. Emit must not block for long: it runs between two
// steps of a program. Failures are the sink's own business; the stream never
// fails a run.
type Sink interface {
	Emit(ctx context.Context, e Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, e Event)

func (f SinkFunc) Emit(ctx context.Context, e Event) { f(ctx, e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(context.Context, Event) {})

// Snapshot is a helper for building board-carrying events.
func Snapshot(w *world.World) *world.Snapshot {
	s := w.Snapshot()
	return &s
}
