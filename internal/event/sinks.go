package event

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/blockgridgo/internal/ctxlog"
)

type multi []Sink

// Multi fans every event out to each sink in order. Nil sinks are skipped.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multi) Emit(ctx context.Context, e Event) {
	for _, s := range m {
		s.Emit(ctx, e)
	}
}

// stamper assigns the session id, a per-session sequence number and the
// wall-clock time before forwarding.
type stamper struct {
	session string
	seq     atomic.Uint64
	now     func() time.Time
	next    Sink
}

// Stamped wraps next so every event carries session, a monotonic Seq starting
// at 1, and a timestamp. A nil now uses time.Now.
func Stamped(session string, next Sink, now func() time.Time) Sink {
	if now == nil {
		now = time.Now
	}
	return &stamper{session: session, now: now, next: next}
}

func (s *stamper) Emit(ctx context.Context, e Event) {
	e.Session = s.session
	e.Seq = s.seq.Add(1)
	if e.Time.IsZero() {
		e.Time = s.now()
	}
	s.next.Emit(ctx, e)
}

// LogSink writes the stream to the context logger. Step events go to Debug,
// outcomes to Info and diagnostics to Warn.
type LogSink struct{}

func (LogSink) Emit(ctx context.Context, e Event) {
	logger := ctxlog.FromContext(ctx)
	attrs := []any{"seq", e.Seq}
	if e.Node != 0 {
		attrs = append(attrs, "node", int(e.Node))
	}
	if e.Command != "" {
		attrs = append(attrs, "command", e.Command)
	}
	if e.Board != nil {
		attrs = append(attrs, "agent", e.Board.Agent.String(), "facing", e.Board.Facing.String(), "moves", e.Board.Moves)
	}

	switch e.Kind {
	case Won:
		logger.Info("🏆 Puzzle solved", attrs...)
	case Lost:
		logger.Info("💥 Run lost", append(attrs, "reason", e.Message)...)
	case Diagnostic:
		logger.Warn(e.Message, attrs...)
	default:
		logger.Log(ctx, slog.LevelDebug, string(e.Kind), attrs...)
	}
}

// Recorder keeps every event in memory. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Kinds returns the kinds of the recorded events, in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

// Last returns the most recent event of kind k.
func (r *Recorder) Last(k Kind) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Kind == k {
			return r.events[i], true
		}
	}
	return Event{}, false
}

// Reset forgets every recorded event.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
