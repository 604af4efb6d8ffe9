package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/specialistvlad/blockgridgo/internal/ctxlog"
	"github.com/specialistvlad/blockgridgo/internal/event"
	"github.com/specialistvlad/blockgridgo/internal/generator"
	"github.com/specialistvlad/blockgridgo/internal/interpreter"
	"github.com/specialistvlad/blockgridgo/internal/program"
	"github.com/specialistvlad/blockgridgo/internal/progression"
	"github.com/specialistvlad/blockgridgo/internal/reach"
	"github.com/specialistvlad/blockgridgo/internal/scheduler"
	"github.com/specialistvlad/blockgridgo/internal/world"
)

// RunState is where the session is in the run lifecycle.
type RunState int

const (
	Idle RunState = iota
	Running
	Attempted
)

func (r RunState) String() string {
	switch r {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Attempted:
		return "attempted"
	default:
		return fmt.Sprintf("run_state(%d)", int(r))
	}
}

// Session is one player's game. All methods are safe for concurrent use;
// Abort is meant to be called while another goroutine is inside Run.
type Session struct {
	id    string
	cfg   Config
	out   event.Sink
	sink  event.Sink
	sched scheduler.Scheduler
	src   rand.Source
	gen   *generator.Generator
	now   func() time.Time

	mu         sync.Mutex
	world      *world.World
	prog       *program.Program
	mode       program.Mode
	privileged bool
	progress   progression.State
	state      RunState
	score      int
	cancel     context.CancelFunc
	machine    *interpreter.Machine
	aborted    bool
}

// New creates a session without a puzzle; call Generate or LoadPuzzle next.
func New(cfg Config, opts ...Option) (*Session, error) {
	s := &Session{
		cfg:  cfg,
		out:  event.Discard,
		now:  time.Now,
		prog: program.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.sched == nil {
		s.sched = scheduler.New(cfg.StepDelay)
	}
	if s.src == nil {
		s.src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	gen, err := generator.New(cfg.Generator, s.src)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", s.id, err)
	}
	s.gen = gen
	s.sink = event.Stamped(s.id, s.out, s.now)
	s.progress = progression.NewState(cfg.Modes, cfg.MaxAttempts)
	s.mode = s.progress.Mode()
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

func (s *Session) logCtx(ctx context.Context) context.Context {
	return ctxlog.With(ctx, "session", s.id)
}

// Generate installs a fresh random puzzle.
func (s *Session) Generate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generateLocked(s.logCtx(ctx), s.gen)
}

// GenerateSeeded installs the puzzle determined by seed.
func (s *Session) GenerateSeeded(ctx context.Context, seed uint64) error {
	gen, err := generator.NewSeeded(s.cfg.Generator, seed)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.logCtx(ctx)
	ctxlog.FromContext(ctx).Debug("Generating seeded puzzle", "seed", seed)
	return s.generateLocked(ctx, gen)
}

// LoadPuzzle installs a fixed layout. The layout must satisfy the world
// invariants and be solvable.
func (s *Session) LoadPuzzle(ctx context.Context, l world.Layout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.logCtx(ctx)
	if s.state == Running {
		return s.reject(ctx, ErrRunInProgress)
	}
	w, err := world.New(l, s.cfg.MoveLimit)
	if err != nil {
		return s.reject(ctx, err)
	}
	if !reach.Reachable(w.Board(), l.Start) {
		return s.reject(ctx, fmt.Errorf("%w: goal %s is unreachable from %s", ErrUnsolvablePuzzle, l.Goal, l.Start.Cell))
	}
	s.install(ctx, w)
	return nil
}

func (s *Session) generateLocked(ctx context.Context, gen *generator.Generator) error {
	if s.state == Running {
		return s.reject(ctx, ErrRunInProgress)
	}
	l, attempts, err := gen.Generate()
	if err != nil {
		return s.reject(ctx, err)
	}
	w, err := world.New(l, s.cfg.MoveLimit)
	if err != nil {
		return s.reject(ctx, err)
	}
	ctxlog.FromContext(ctx).Debug("Puzzle generated", "attempts", attempts)
	s.install(ctx, w)
	return nil
}

func (s *Session) install(ctx context.Context, w *world.World) {
	s.world = w
	s.state = Idle
	snap := w.Snapshot()
	ctxlog.FromContext(ctx).Info("🧩 New puzzle", "agent", snap.Agent.String(), "goal", snap.Goal.String(), "obstacles", len(snap.Obstacles))
	s.sink.Emit(ctx, event.Event{Kind: event.Board, Board: &snap})
}

// Insert appends a block under parent (program.Root for the top level) and
// returns its id.
func (s *Session) Insert(ctx context.Context, spec program.Spec, parent program.ID) (program.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.logCtx(ctx)
	if err := s.editable(); err != nil {
		return 0, s.reject(ctx, err)
	}
	if !s.mode.Allows(spec.Kind) {
		return 0, s.reject(ctx, fmt.Errorf("%w: %s in %s mode", ErrModeMismatch, spec.Kind, s.mode))
	}
	n, err := s.prog.Insert(spec, parent)
	if err != nil {
		return 0, s.reject(ctx, err)
	}
	ctxlog.FromContext(ctx).Debug("Block inserted", "node", int(n.ID()), "kind", n.Kind().String(), "parent", int(parent))
	return n.ID(), nil
}

// Remove deletes a block and everything inside it.
func (s *Session) Remove(ctx context.Context, id program.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.logCtx(ctx)
	if err := s.editable(); err != nil {
		return s.reject(ctx, err)
	}
	if !s.prog.Remove(id) {
		return s.reject(ctx, fmt.Errorf("%w: %d", program.ErrUnknownNode, id))
	}
	ctxlog.FromContext(ctx).Debug("Block removed", "node", int(id))
	return nil
}

// SetRepeatCount changes the count of a repeat block and returns the clamped
// value that was stored.
func (s *Session) SetRepeatCount(ctx context.Context, id program.ID, value int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.logCtx(ctx)
	if err := s.editable(); err != nil {
		return 0, s.reject(ctx, err)
	}
	v, err := s.prog.SetRepeatCount(id, value)
	if err != nil {
		return 0, s.reject(ctx, err)
	}
	return v, nil
}

// SetMode switches the active mode and prunes blocks it forbids.
// Non-privileged players can only confirm the mode progression chose.
func (s *Session) SetMode(ctx context.Context, m program.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.logCtx(ctx)
	if !m.Valid() {
		return s.reject(ctx, fmt.Errorf("%w: unknown mode %d", ErrRejectedEdit, int(m)))
	}
	if s.state == Running {
		return s.reject(ctx, ErrRunInProgress)
	}
	if !s.privileged && m != s.progress.Mode() {
		return s.reject(ctx, fmt.Errorf("%w: current mode is %s", ErrModeLocked, s.progress.Mode()))
	}
	s.switchMode(ctx, m)
	return nil
}

func (s *Session) switchMode(ctx context.Context, m program.Mode) {
	if s.mode == m {
		return
	}
	from := s.mode
	s.mode = m
	removed := s.prog.Prune(m)
	ctxlog.FromContext(ctx).Info("🔀 Mode changed", "from", from.String(), "to", m.String(), "pruned", removed)
	if removed > 0 {
		s.sink.Emit(ctx, event.Event{
			Kind:    event.Diagnostic,
			Message: fmt.Sprintf("mode %s removed %d block(s) not available in it", m, removed),
		})
	}
}

// SetUser changes whether the player bypasses progression. Dropping the
// privilege snaps the mode back to the one progression dictates.
func (s *Session) SetUser(ctx context.Context, privileged bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.logCtx(ctx)
	if s.state == Running {
		return s.reject(ctx, ErrRunInProgress)
	}
	s.privileged = privileged
	ctxlog.FromContext(ctx).Debug("Player updated", "privileged", privileged)
	if !privileged {
		s.switchMode(ctx, s.progress.Mode())
	}
	return nil
}

// Run executes the program on the current puzzle and blocks until the run
// reaches a terminal state, is aborted, or ctx ends. Events are emitted as
// the run progresses.
func (s *Session) Run(ctx context.Context) (interpreter.Result, error) {
	ctx = s.logCtx(ctx)
	m, runCtx, err := s.beginRun(ctx)
	if err != nil {
		return interpreter.Result{}, err
	}
	if m == nil {
		return interpreter.Result{Outcome: interpreter.NoOp, Reason: interpreter.ReasonEmpty}, nil
	}

	driveErr := s.sched.Drive(runCtx, guarded{s: s, m: m})
	return s.endRun(ctx, m, driveErr), nil
}

// beginRun applies the run gates. It returns a nil machine and no error for
// an empty program.
func (s *Session) beginRun(ctx context.Context) (*interpreter.Machine, context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.world == nil:
		return nil, nil, s.reject(ctx, ErrNoPuzzle)
	case s.state == Running:
		return nil, nil, s.reject(ctx, ErrRunInProgress)
	case s.state == Attempted:
		return nil, nil, s.reject(ctx, ErrAlreadyAttempted)
	}

	if !s.privileged {
		next, tr := progression.Enforce(s.progress)
		s.progress = next
		s.applyTransition(ctx, tr)
		if s.progress.Locked {
			return nil, nil, s.reject(ctx, ErrLocked)
		}
		s.switchMode(ctx, s.progress.Mode())
	}

	if s.prog.Empty() {
		s.sink.Emit(ctx, event.Event{Kind: event.Diagnostic, Message: interpreter.ReasonEmpty})
		ctxlog.FromContext(ctx).Info("🫙 Nothing to run")
		return nil, nil, nil
	}

	m := interpreter.New(s.world, s.prog, s.cfg.Limits, s.sink)
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.machine = m
	s.aborted = false
	s.state = Running
	ctxlog.FromContext(ctx).Info("▶️ Run started", "mode", s.mode.String(), "blocks", s.prog.Len())
	return m, runCtx, nil
}

func (s *Session) endRun(ctx context.Context, m *interpreter.Machine, driveErr error) interpreter.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger := ctxlog.FromContext(ctx)
	s.cancel()
	s.cancel = nil
	s.machine = nil

	if driveErr != nil && !m.Done() {
		if !errors.Is(driveErr, context.Canceled) {
			logger.Warn("Run interrupted", "error", driveErr)
		}
		m.Abort(context.WithoutCancel(ctx))
	}
	res := m.Result()

	if res.Reason == interpreter.ReasonAborted {
		s.world.Restart()
		s.state = Idle
		snap := s.world.Snapshot()
		s.sink.Emit(ctx, event.Event{Kind: event.Board, Board: &snap})
		logger.Info("⏹️ Run aborted", "user", s.aborted)
		return res
	}

	s.state = Attempted
	if res.Outcome == interpreter.Won {
		s.score++
	}
	logger.Info("🏁 Run finished", "outcome", res.Outcome.String(), "reason", res.Reason, "moves", res.Moves, "score", s.score)

	if !s.privileged {
		next, tr := progression.Record(s.progress, progression.Attempt{
			Success: res.Outcome == interpreter.Won,
			Moves:   res.Moves,
			At:      s.now(),
		})
		s.progress = next
		s.applyTransition(ctx, tr)
	}
	return res
}

func (s *Session) applyTransition(ctx context.Context, tr progression.Transition) {
	switch tr.Kind {
	case progression.Advanced:
		s.sink.Emit(ctx, event.Event{Kind: event.Diagnostic, Message: fmt.Sprintf("attempts in %s used up, moving on to %s", tr.From, tr.To)})
		s.switchMode(ctx, tr.To)
	case progression.Locked:
		s.sink.Emit(ctx, event.Event{Kind: event.Diagnostic, Message: "all attempts used up, the game is locked"})
		ctxlog.FromContext(ctx).Info("🔒 Game locked")
	}
}

// Abort cancels the run in progress. It reports whether there was one. A
// run whose machine already reached a terminal state is not aborted.
func (s *Session) Abort() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running || s.cancel == nil {
		return false
	}
	if s.machine != nil && s.machine.Done() {
		return false
	}
	s.aborted = true
	s.cancel()
	return true
}

// Reset starts over on a fresh puzzle with an empty program and zero score.
func (s *Session) Reset(ctx context.Context) error {
	return s.advance(ctx, true)
}

// NextPuzzle moves on to a fresh puzzle with an empty program. The score is
// kept.
func (s *Session) NextPuzzle(ctx context.Context) error {
	return s.advance(ctx, false)
}

func (s *Session) advance(ctx context.Context, clearScore bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.logCtx(ctx)
	if s.state == Running {
		return s.reject(ctx, ErrRunInProgress)
	}
	if err := s.generateLocked(ctx, s.gen); err != nil {
		return err
	}
	s.prog.Clear()
	if clearScore {
		s.score = 0
	}
	return nil
}

// editable reports why the program cannot be edited right now, if it can't.
func (s *Session) editable() error {
	switch s.state {
	case Running:
		return fmt.Errorf("%w: a run is in progress", ErrEditLocked)
	case Attempted:
		return ErrEditLocked
	}
	return nil
}

// reject emits err as a diagnostic and returns it.
func (s *Session) reject(ctx context.Context, err error) error {
	ctxlog.FromContext(ctx).Warn("Operation rejected", "error", err)
	s.sink.Emit(ctx, event.Event{Kind: event.Diagnostic, Message: err.Error()})
	return err
}

// guarded serializes machine steps with the session lock so views never
// observe a half-applied command.
type guarded struct {
	s *Session
	m *interpreter.Machine
}

func (g guarded) Step(ctx context.Context) bool {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	return g.m.Step(ctx)
}
