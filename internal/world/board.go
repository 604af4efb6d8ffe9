// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package world

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidLayout is returned when a layout breaks a board invariant.
var ErrInvalidLayout = errors.New("invalid layout")

// Layout is the complete description of a puzzle: board geometry plus the
// agent's starting pose. It is what the generator produces and what fixed
// puzzles are loaded from.
type Layout struct {
	Size      int    `json:"size"`
	Start     Pose   `json:"start"`
	Goal      Cell   `json:"goal"`
	Obstacles []Cell `json:"obstacles"`
}

// Validate checks the layout against the world invariants: everything on the
// board, obstacles distinct, and neither the start nor the goal covered by an
// obstacle or by each other.
func (l Layout) Validate() error {
	if l.Size < 2 {
		return fmt.Errorf("%w: size must be at least 2, got %d", ErrInvalidLayout, l.Size)
	}
	if !l.Start.Facing.Valid() {
		return fmt.Errorf("%w: start facing %d is not a direction", ErrInvalidLayout, int(l.Start.Facing))
	}
	if !inBounds(l.Size, l.Start.Cell) {
		return fmt.Errorf("%w: start %s is off the board", ErrInvalidLayout, l.Start.Cell)
	}
	if !inBounds(l.Size, l.Goal) {
		return fmt.Errorf("%w: goal %s is off the board", ErrInvalidLayout, l.Goal)
	}
	if l.Goal == l.Start.Cell {
		return fmt.Errorf("%w: goal and start share cell %s", ErrInvalidLayout, l.Goal)
	}
	seen := make(map[Cell]struct{}, len(l.Obstacles))
	for _, o := range l.Obstacles {
		switch {
		case !inBounds(l.Size, o):
			return fmt.Errorf("%w: obstacle %s is off the board", ErrInvalidLayout, o)
		case o == l.Start.Cell:
			return fmt.Errorf("%w: obstacle on start cell %s", ErrInvalidLayout, o)
		case o == l.Goal:
			return fmt.Errorf("%w: obstacle on goal cell %s", ErrInvalidLayout, o)
		}
		if _, dup := seen[o]; dup {
			return fmt.Errorf("%w: duplicate obstacle %s", ErrInvalidLayout, o)
		}
		seen[o] = struct{}{}
	}
	return nil
}

// Board is the immutable geometry of one puzzle.
type Board struct {
	size      int
	goal      Cell
	obstacles map[Cell]struct{}
}

// NewBoard builds the board part of a validated layout.
func NewBoard(l Layout) (*Board, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	b := &Board{
		size:      l.Size,
		goal:      l.Goal,
		obstacles: make(map[Cell]struct{}, len(l.Obstacles)),
	}
	for _, o := range l.Obstacles {
		b.obstacles[o] = struct{}{}
	}
	return b, nil
}

// Size is the side length of the square board.
func (b *Board) Size() int { return b.size }

// Goal is the target cell.
func (b *Board) Goal() Cell { return b.goal }

// InBounds reports whether c lies on the board.
func (b *Board) InBounds(c Cell) bool {
	return inBounds(b.size, c)
}

// IsObstacle reports whether c is blocked.
func (b *Board) IsObstacle(c Cell) bool {
	_, ok := b.obstacles[c]
	return ok
}

// Obstacles returns the obstacle cells in row-major order.
func (b *Board) Obstacles() []Cell {
	out := make([]Cell, 0, len(b.obstacles))
	for c := range b.obstacles {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, c Cell) int {
		if a.Y != c.Y {
			return a.Y - c.Y
		}
		return a.X - c.X
	})
	return out
}

// Clamp returns the nearest on-board cell to c.
func (b *Board) Clamp(c Cell) Cell {
	return Cell{X: clamp(c.X, 0, b.size-1), Y: clamp(c.Y, 0, b.size-1)}
}

func inBounds(size int, c Cell) bool {
	return c.X >= 0 && c.X < size && c.Y >= 0 && c.Y < size
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
