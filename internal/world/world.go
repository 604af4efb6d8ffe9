// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package world

import "fmt"

// DefaultMoveLimit is the number of successful forward moves allowed per run.
const DefaultMoveLimit = 20

// MoveResult tags the outcome of a forward move.
type MoveResult int

const (
	// Moved means the move was charged and the agent is not on the goal.
	Moved MoveResult = iota
	// Blocked means the target cell is an obstacle; nothing changed.
	Blocked
	// Won means the agent arrived on the goal cell.
	Won
)

func (r MoveResult) String() string {
	switch r {
	case Moved:
		return "moved"
	case Blocked:
		return "blocked"
	case Won:
		return "won"
	default:
		return fmt.Sprintf("move_result(%d)", int(r))
	}
}

// World is one puzzle in play: a board plus the agent's current pose and the
// number of moves charged so far.
type World struct {
	board     *Board
	start     Pose
	pose      Pose
	moves     int
	moveLimit int
}

// New creates a world positioned at the layout's starting pose. A
// non-positive moveLimit selects DefaultMoveLimit.
func New(l Layout, moveLimit int) (*World, error) {
	board, err := NewBoard(l)
	if err != nil {
		return nil, err
	}
	if moveLimit <= 0 {
		moveLimit = DefaultMoveLimit
	}
	return &World{
		board:     board,
		start:     l.Start,
		pose:      l.Start,
		moveLimit: moveLimit,
	}, nil
}

// Board returns the immutable geometry.
func (w *World) Board() *Board { return w.board }

// Pose returns the agent's current pose.
func (w *World) Pose() Pose { return w.pose }

// Start returns the pose the puzzle started from.
func (w *World) Start() Pose { return w.start }

// Moves returns the number of charged moves in the current run.
func (w *World) Moves() int { return w.moves }

// MoveLimit returns the move budget of a run.
func (w *World) MoveLimit() int { return w.moveLimit }

// MovesExhausted reports whether the move budget is used up.
func (w *World) MovesExhausted() bool { return w.moves >= w.moveLimit }

// ResetMoves zeroes the move counter without touching the pose.
func (w *World) ResetMoves() { w.moves = 0 }

// Restart puts the agent back on its starting pose with a fresh move counter.
func (w *World) Restart() {
	w.pose = w.start
	w.moves = 0
}

// Layout reconstructs the layout the world was built from.
func (w *World) Layout() Layout {
	return Layout{
		Size:      w.board.size,
		Start:     w.start,
		Goal:      w.board.goal,
		Obstacles: w.board.Obstacles(),
	}
}

// Ahead returns the unclamped cell in front of the agent.
func (w *World) Ahead() Cell {
	dx, dy := w.pose.Facing.Delta()
	return w.pose.Cell.Add(dx, dy)
}

// TryMove advances the agent one cell along its facing. Off-board targets are
// clamped to the board edge, so pushing against the boundary leaves the agent
// in place but is still charged as a move. An obstacle rejects the move
// without charging it.
func (w *World) TryMove() MoveResult {
	target := w.board.Clamp(w.Ahead())
	if w.board.IsObstacle(target) {
		return Blocked
	}
	w.pose.Cell = target
	w.moves++
	if target == w.board.goal {
		return Won
	}
	return Moved
}

// Turn rotates the agent in place. Turning is never charged.
func (w *World) Turn(t Turn) Facing {
	if t == TurnRight {
		w.pose.Facing = w.pose.Facing.TurnRight()
	} else {
		w.pose.Facing = w.pose.Facing.TurnLeft()
	}
	return w.pose.Facing
}

// ObstacleAhead reports whether the cell in front of the agent is an obstacle.
func (w *World) ObstacleAhead() bool {
	return w.board.IsObstacle(w.Ahead())
}

// BoundaryAhead reports whether the cell in front of the agent is off the board.
func (w *World) BoundaryAhead() bool {
	return !w.board.InBounds(w.Ahead())
}

// AtGoal reports whether the agent stands on the goal.
func (w *World) AtGoal() bool {
	return w.pose.Cell == w.board.goal
}

// Snapshot is the board state handed to observers after every mutation.
type Snapshot struct {
	Size      int    `json:"size"`
	Agent     Cell   `json:"agent"`
	Facing    Facing `json:"facing"`
	Goal      Cell   `json:"goal"`
	Obstacles []Cell `json:"obstacles"`
	Moves     int    `json:"moves"`
	MoveLimit int    `json:"move_limit"`
}

// Snapshot copies the current state; the result shares nothing with w.
func (w *World) Snapshot() Snapshot {
	return Snapshot{
		Size:      w.board.size,
		Agent:     w.pose.Cell,
		Facing:    w.pose.Facing,
		Goal:      w.board.goal,
		Obstacles: w.board.Obstacles(),
		Moves:     w.moves,
		MoveLimit: w.moveLimit,
	}
}
