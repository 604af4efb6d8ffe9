// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package world

import (
	"fmt"
	"strings"
)

// Cell is a board coordinate. X grows to the right, Y grows downwards.
type Cell struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Add returns the cell offset by (dx, dy). The result may be off the board.
func (c Cell) Add(dx, dy int) Cell {
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Facing is the orientation of the agent. The constants are ordered clockwise
// so that a right turn is +1 and a left turn is -1 modulo 4.
type Facing int

const (
	Up Facing = iota
	Right
	Down
	Left
)

var facingNames = [...]string{"up", "right", "down", "left"}

// deltas holds the unit vector of each facing, indexed by Facing.
var deltas = [...][2]int{
	Up:    {0, -1},
	Right: {1, 0},
	Down:  {0, 1},
	Left:  {-1, 0},
}

// Valid reports whether f is one of the four cardinal directions.
func (f Facing) Valid() bool {
	return f >= Up && f <= Left
}

func (f Facing) String() string {
	if !f.Valid() {
		return fmt.Sprintf("facing(%d)", int(f))
	}
	return facingNames[f]
}

// TurnRight returns the facing after a clockwise quarter turn.
func (f Facing) TurnRight() Facing {
	return (f + 1) % 4
}

// TurnLeft returns the facing after a counter-clockwise quarter turn.
func (f Facing) TurnLeft() Facing {
	return (f + 3) % 4
}

// Delta returns the unit vector for the facing.
func (f Facing) Delta() (dx, dy int) {
	d := deltas[f]
	return d[0], d[1]
}

// MarshalText encodes the facing by name so snapshots read naturally in JSON.
func (f Facing) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("invalid facing %d", int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (f *Facing) UnmarshalText(text []byte) error {
	parsed, err := ParseFacing(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFacing converts a case-insensitive direction name into a Facing.
func ParseFacing(s string) (Facing, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range facingNames {
		if n == name {
			return Facing(i), nil
		}
	}
	return 0, fmt.Errorf("unknown facing %q: must be one of up, right, down, left", s)
}

// Turn identifies the direction of a turn command.
type Turn int

const (
	TurnLeft Turn = iota
	TurnRight
)

func (t Turn) String() string {
	if t == TurnRight {
		return "right"
	}
	return "left"
}

// Pose is the position and orientation of the agent.
type Pose struct {
	Cell   Cell   `json:"cell"`
	Facing Facing `json:"facing"`
}
