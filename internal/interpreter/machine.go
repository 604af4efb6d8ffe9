package interpreter

import (
	"context"
	"fmt"

	"github.com/specialistvlad/blockgridgo/internal/ctxlog"
	"github.com/specialistvlad/blockgridgo/internal/event"
	"github.com/specialistvlad/blockgridgo/internal/program"
	"github.com/specialistvlad/blockgridgo/internal/world"
)

const (
	DefaultCommandLimit      = 500
	DefaultPerConditionLimit = 200
)

// Reasons attached to Lost outcomes.
const (
	ReasonCommandLimit   = "command limit reached"
	ReasonConditionLimit = "condition loop limit reached"
	ReasonMoveLimit      = "max moves exceeded"
	ReasonNotAtGoal      = "program ended, not at goal"
	ReasonAborted        = "run aborted"
	ReasonEmpty          = "program is empty"
)

// Limits bounds a single run. Zero fields take the defaults.
type Limits struct {
	CommandLimit      int
	PerConditionLimit int
}

func (l Limits) withDefaults() Limits {
	if l.CommandLimit <= 0 {
		l.CommandLimit = DefaultCommandLimit
	}
	if l.PerConditionLimit <= 0 {
		l.PerConditionLimit = DefaultPerConditionLimit
	}
	return l
}

// State is the lifecycle position of a machine.
type State int

const (
	Idle State = iota
	Running
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome is the verdict of a finished run.
type Outcome int

const (
	Pending Outcome = iota
	Won
	Lost
	// NoOp is reported for an empty program. It is not a failure.
	NoOp
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Won:
		return "won"
	case Lost:
		return "lost"
	case NoOp:
		return "noop"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result summarizes a run.
type Result struct {
	Outcome  Outcome
	Reason   string
	Moves    int
	Commands int
}

// frame is one block being walked. The root list is a frame with a nil node.
type frame struct {
	node   *program.Node
	body   []*program.Node
	pc     int
	passes int
}

// Machine walks one program over one world. It is single-use: build a new
// machine for every run. It is not safe for concurrent use.
type Machine struct {
	world  *world.World
	prog   *program.Program
	limits Limits
	sink   event.Sink

	state    State
	stack    []frame
	commands int
	result   Result
}

// New prepares a run. A nil sink discards events.
func New(w *world.World, p *program.Program, limits Limits, sink event.Sink) *Machine {
	if sink == nil {
		sink = event.Discard
	}
	return &Machine{
		world:  w,
		prog:   p,
		limits: limits.withDefaults(),
		sink:   sink,
	}
}

// State returns the lifecycle position.
func (m *Machine) State() State { return m.state }

// Done reports whether the machine reached a terminal state.
func (m *Machine) Done() bool { return m.state == Done }

// Result returns the verdict. It is only meaningful once Done.
func (m *Machine) Result() Result { return m.result }

// Commands returns the number of atomic commands applied so far.
func (m *Machine) Commands() int { return m.commands }

// Step advances to the next suspension point. It returns true while the run
// has more steps to take.
func (m *Machine) Step(ctx context.Context) bool {
	switch m.state {
	case Done:
		return false
	case Idle:
		m.start(ctx)
		if m.state == Done {
			return false
		}
	}

	for m.state == Running {
		if len(m.stack) == 0 {
			m.finishWalk(ctx)
			break
		}
		top := &m.stack[len(m.stack)-1]

		if top.pc < len(top.body) {
			n := top.body[top.pc]
			top.pc++
			if n.Kind().Atomic() {
				m.apply(ctx, n)
				break
			}
			m.enter(ctx, n)
			continue
		}
		m.endOfBody(ctx, top)
	}
	return m.state == Running
}

// Run steps the machine to completion without pausing. A cancelled context
// aborts the run.
func (m *Machine) Run(ctx context.Context) Result {
	for m.Step(ctx) {
		if ctx.Err() != nil {
			m.Abort(ctx)
		}
	}
	return m.result
}

// Abort forces a Lost outcome. It is a no-op once the machine is Done.
func (m *Machine) Abort(ctx context.Context) {
	if m.state == Done {
		return
	}
	m.finish(ctx, Lost, ReasonAborted)
}

func (m *Machine) start(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	m.world.ResetMoves()
	if m.prog.Empty() {
		logger.Debug("Nothing to run, program is empty")
		m.state = Done
		m.result = Result{Outcome: NoOp, Reason: ReasonEmpty}
		m.sink.Emit(ctx, event.Event{Kind: event.Diagnostic, Message: ReasonEmpty})
		return
	}
	logger.Debug("Run started", "nodes", m.prog.Len(), "command_limit", m.limits.CommandLimit)
	m.state = Running
	m.stack = append(m.stack[:0], frame{body: m.prog.Roots()})
}

// enter handles a block node reached by the walk.
func (m *Machine) enter(ctx context.Context, n *program.Node) {
	switch n.Kind() {
	case program.Repeat:
		m.stack = append(m.stack, frame{node: n, body: n.Children()})
	case program.Conditional:
		if m.holds(n.Predicate()) {
			ctxlog.FromContext(ctx).Debug("Condition holds, skipping block", "node", int(n.ID()), "predicate", n.Predicate().String())
			return
		}
		if m.commands >= m.limits.CommandLimit {
			m.finish(ctx, Lost, ReasonConditionLimit)
			return
		}
		m.stack = append(m.stack, frame{node: n, body: n.Children(), passes: 1})
	}
}

// endOfBody decides whether the block on top of the stack runs another pass.
func (m *Machine) endOfBody(ctx context.Context, top *frame) {
	switch {
	case top.node == nil:
		m.pop()
	case top.node.Kind() == program.Repeat:
		top.passes++
		if top.passes < top.node.Count() {
			top.pc = 0
			return
		}
		m.pop()
	case top.node.Kind() == program.Conditional:
		if m.holds(top.node.Predicate()) {
			m.pop()
			return
		}
		if top.passes >= m.limits.PerConditionLimit || m.commands >= m.limits.CommandLimit {
			m.finish(ctx, Lost, ReasonConditionLimit)
			return
		}
		top.passes++
		top.pc = 0
	}
}

func (m *Machine) pop() {
	m.stack = m.stack[:len(m.stack)-1]
}

// apply runs one atomic command, which is exactly one suspension point.
func (m *Machine) apply(ctx context.Context, n *program.Node) {
	if m.commands >= m.limits.CommandLimit {
		m.finish(ctx, Lost, ReasonCommandLimit)
		return
	}
	m.commands++

	ev := event.Event{Node: n.ID(), Command: n.Kind().String()}
	won := false
	switch n.Kind() {
	case program.Forward:
		switch m.world.TryMove() {
		case world.Blocked:
			ev.Kind = event.Blocked
		case world.Won:
			ev.Kind = event.Moved
			won = true
		default:
			ev.Kind = event.Moved
		}
	case program.TurnLeft:
		m.world.Turn(world.TurnLeft)
		ev.Kind = event.Turned
	case program.TurnRight:
		m.world.Turn(world.TurnRight)
		ev.Kind = event.Turned
	}
	ev.Board = event.Snapshot(m.world)
	m.sink.Emit(ctx, ev)

	switch {
	case won:
		m.finish(ctx, Won, "")
	case m.world.MovesExhausted():
		m.finish(ctx, Lost, ReasonMoveLimit)
	}
}

func (m *Machine) finishWalk(ctx context.Context) {
	if m.world.AtGoal() {
		m.finish(ctx, Won, "")
		return
	}
	m.finish(ctx, Lost, ReasonNotAtGoal)
}

func (m *Machine) finish(ctx context.Context, o Outcome, reason string) {
	m.state = Done
	m.stack = nil
	m.result = Result{
		Outcome:  o,
		Reason:   reason,
		Moves:    m.world.Moves(),
		Commands: m.commands,
	}
	kind := event.Lost
	if o == Won {
		kind = event.Won
	}
	ctxlog.FromContext(ctx).Debug("Run finished", "outcome", o.String(), "reason", reason, "moves", m.result.Moves, "commands", m.commands)
	m.sink.Emit(ctx, event.Event{Kind: kind, Message: reason, Board: event.Snapshot(m.world)})
}

func (m *Machine) holds(p program.Predicate) bool {
	switch p {
	case program.ObstacleAhead:
		return m.world.ObstacleAhead()
	case program.BoundaryAhead:
		return m.world.BoundaryAhead()
	case program.AtGoal:
		return m.world.AtGoal()
	default:
		return false
	}
}
